package pricing

import (
	"context"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// DefaultBinomialSteps 美式二叉树默认步数
const DefaultBinomialSteps = 500

// Engine 按行权方式分派的本地定价引擎，实现 domain.PricingOracle
type Engine struct {
	steps int
}

// NewEngine 创建定价引擎，steps <= 0 时使用默认步数
func NewEngine(steps int) *Engine {
	if steps <= 0 {
		steps = DefaultBinomialSteps
	}
	return &Engine{steps: steps}
}

// Price 返回未舍入的 price/delta/gamma
func (e *Engine) Price(ctx context.Context, in domain.PricingInput) (domain.PriceResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceResult{}, err
	}
	leg := in.Leg
	if err := validate(leg); err != nil {
		return domain.PriceResult{}, err
	}
	divs := schedule(leg, in.Dividends)
	if leg.Style == domain.ExerciseAmerican {
		return coxRossRubinstein(leg, divs, e.steps)
	}
	return blackScholesMerton(leg, divs)
}
