package pricing

import (
	"fmt"
	"math"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// minSteps 保证回溯过程中能取到第 2 步的三个节点
const minSteps = 3

// coxRossRubinstein 美式期权二叉树：树建在扣除分红现值后的价格上，
// 节点的完整股价再加回尚未支付分红的现值，每个节点比较提前行权价值。
// delta/gamma 取自树的第 1、2 步。
func coxRossRubinstein(leg domain.OptionLeg, divs []cashDividend, steps int) (domain.PriceResult, error) {
	s0, err := escrowedSpot(leg, divs)
	if err != nil {
		return domain.PriceResult{}, err
	}
	k, r, v := leg.Strike, leg.Rate, leg.Volatility
	t := yearFraction(leg.ValuationDate, leg.ExpiryDate)
	if t <= 0 {
		return intrinsic(leg.Right, s0, k), nil
	}
	if steps < minSteps {
		steps = minSteps
	}

	dt := t / float64(steps)
	u := math.Exp(v * math.Sqrt(dt))
	d := 1 / u
	growth := math.Exp(r * dt)
	p := (growth - d) / (u - d)
	if p <= 0 || p >= 1 {
		return domain.PriceResult{}, fmt.Errorf("risk-neutral probability %v out of (0,1), increase steps", p)
	}
	disc := 1 / growth

	stock := func(i, j int) float64 {
		return s0*math.Pow(u, float64(j))*math.Pow(d, float64(i-j)) + presentValueAfter(divs, r, float64(i)*dt)
	}

	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		values[j] = payoff(leg.Right, stock(steps, j), k)
	}

	var step1, step2 [3]float64
	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			cont := disc * (p*values[j+1] + (1-p)*values[j])
			values[j] = math.Max(cont, payoff(leg.Right, stock(i, j), k))
		}
		switch i {
		case 2:
			copy(step2[:], values[:3])
		case 1:
			copy(step1[:2], values[:2])
		}
	}

	s10, s11 := stock(1, 0), stock(1, 1)
	s20, s21, s22 := stock(2, 0), stock(2, 1), stock(2, 2)
	deltaUp := (step2[2] - step2[1]) / (s22 - s21)
	deltaDown := (step2[1] - step2[0]) / (s21 - s20)

	return domain.PriceResult{
		Price: values[0],
		Delta: (step1[1] - step1[0]) / (s11 - s10),
		Gamma: (deltaUp - deltaDown) / ((s22 - s20) / 2),
	}, nil
}
