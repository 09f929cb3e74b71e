// Package pricing 提供 PricingOracle 的本地实现：欧式期权用 Black-Scholes-Merton 解析式，
// 美式期权用 Cox-Ross-Rubinstein 二叉树，两者都按托管分红 (escrowed dividend) 处理离散分红。
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// daysPerYear Actual/365 日计数
const daysPerYear = 365.0

func yearFraction(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}

// cashDividend 以估值日起算的年化时间表示的离散分红
type cashDividend struct {
	t      float64
	amount float64
}

// schedule 只保留估值日之后、到期日及之前的分红
func schedule(leg domain.OptionLeg, events []domain.DividendEvent) []cashDividend {
	out := make([]cashDividend, 0, len(events))
	for _, ev := range events {
		if ev.Amount == 0 || !ev.Date.After(leg.ValuationDate) || ev.Date.After(leg.ExpiryDate) {
			continue
		}
		out = append(out, cashDividend{t: yearFraction(leg.ValuationDate, ev.Date), amount: ev.Amount})
	}
	return out
}

// presentValueAfter 时刻 t 之后仍未支付的分红在 t 时刻的现值
func presentValueAfter(divs []cashDividend, r, t float64) float64 {
	var pv float64
	for _, d := range divs {
		if d.t > t {
			pv += d.amount * math.Exp(-r*(d.t-t))
		}
	}
	return pv
}

// escrowedSpot 现价扣除期内分红现值
func escrowedSpot(leg domain.OptionLeg, divs []cashDividend) (float64, error) {
	s := leg.Spot - presentValueAfter(divs, leg.Rate, 0)
	if s <= 0 {
		return 0, fmt.Errorf("dividends present value exceeds spot %v", leg.Spot)
	}
	return s, nil
}

func validate(leg domain.OptionLeg) error {
	switch {
	case leg.ExpiryDate.Before(leg.ValuationDate):
		return fmt.Errorf("expiry %s before valuation %s", leg.ExpiryDate.Format(domain.DateLayout), leg.ValuationDate.Format(domain.DateLayout))
	case leg.Volatility <= 0:
		return fmt.Errorf("volatility must be positive, got %v", leg.Volatility)
	case leg.Spot <= 0 || leg.Strike <= 0:
		return fmt.Errorf("spot and strike must be positive, got %v/%v", leg.Spot, leg.Strike)
	}
	return nil
}

func payoff(right domain.OptionRight, s, k float64) float64 {
	if right == domain.RightCall {
		return math.Max(s-k, 0)
	}
	return math.Max(k-s, 0)
}

// intrinsic 到期当日：内在价值、阶跃 delta、gamma 为 0
func intrinsic(right domain.OptionRight, s, k float64) domain.PriceResult {
	res := domain.PriceResult{Price: payoff(right, s, k)}
	switch {
	case right == domain.RightCall && s > k:
		res.Delta = 1
	case right == domain.RightPut && s < k:
		res.Delta = -1
	}
	return res
}
