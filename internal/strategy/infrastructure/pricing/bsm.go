package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// blackScholesMerton 欧式期权解析解，S 取扣除分红现值后的现价
func blackScholesMerton(leg domain.OptionLeg, divs []cashDividend) (domain.PriceResult, error) {
	s, err := escrowedSpot(leg, divs)
	if err != nil {
		return domain.PriceResult{}, err
	}
	k, r, v := leg.Strike, leg.Rate, leg.Volatility
	t := yearFraction(leg.ValuationDate, leg.ExpiryDate)
	if t <= 0 {
		return intrinsic(leg.Right, s, k), nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*v*v)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT
	n := distuv.UnitNormal
	df := math.Exp(-r * t)

	res := domain.PriceResult{Gamma: n.Prob(d1) / (s * v * sqrtT)}
	if leg.Right == domain.RightCall {
		res.Price = s*n.CDF(d1) - k*df*n.CDF(d2)
		res.Delta = n.CDF(d1)
	} else {
		res.Price = k*df*n.CDF(-d2) - s*n.CDF(-d1)
		res.Delta = n.CDF(d1) - 1
	}
	return res, nil
}
