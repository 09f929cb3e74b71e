package domain

import (
	"context"
	"fmt"
)

// PricingInput 一次定价调用的完整数值描述
type PricingInput struct {
	Leg       OptionLeg
	Dividends []DividendEvent
}

// PriceResult 定价引擎返回的价格与一阶/二阶现货敏感度
type PriceResult struct {
	Price float64
	Delta float64
	Gamma float64
}

// PricingOracle 外部估值引擎，只返回 price/delta/gamma
type PricingOracle interface {
	Price(ctx context.Context, in PricingInput) (PriceResult, error)
}

// Greeks 单腿希腊字母
type Greeks struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64
}

// VolBump 相对波动率扰动 (+1%)
const VolBump = 0.01

// PriceLeg 对齐分红后调用定价引擎，结果四舍五入到 3 位小数。
// 引擎失败不重试，作为 PricingFailure 返回。
func PriceLeg(ctx context.Context, oracle PricingOracle, index int, leg OptionLeg, dividends []DividendEvent) (PriceResult, error) {
	res, err := oracle.Price(ctx, PricingInput{Leg: leg, Dividends: AlignDividends(leg, dividends)})
	if err != nil {
		return PriceResult{}, NewEngineError(KindPricingFailure, index, "price", err)
	}
	return PriceResult{
		Price: round3(res.Price),
		Delta: round3(res.Delta),
		Gamma: round3(res.Gamma),
	}, nil
}

// VegaEstimator 通过波动率相对扰动重定价求 vega
type VegaEstimator struct {
	Oracle PricingOracle
}

// BumpedVolatility v' = v + 0.01·v
func BumpedVolatility(v float64) float64 {
	return v + VolBump*v
}

// Estimate 以基准价格 base 为参照，vega = (P − P')/(v − v')，保留 3 位小数
func (e VegaEstimator) Estimate(ctx context.Context, index int, leg OptionLeg, dividends []DividendEvent, base float64) (float64, error) {
	v := leg.Volatility
	bumped := BumpedVolatility(v)
	if v == bumped {
		return 0, NewEngineError(KindInvalidInput, index, "vega", fmt.Errorf("volatility %v cannot be bumped", v))
	}
	res, err := PriceLeg(ctx, e.Oracle, index, leg.WithVolatility(bumped), dividends)
	if err != nil {
		return 0, err
	}
	return round3((base - res.Price) / (v - bumped)), nil
}

// LegGreeks 单腿完整希腊字母：基准定价 + vega 重定价
func LegGreeks(ctx context.Context, oracle PricingOracle, index int, leg OptionLeg, dividends []DividendEvent) (Greeks, error) {
	base, err := PriceLeg(ctx, oracle, index, leg, dividends)
	if err != nil {
		return Greeks{}, err
	}
	vega, err := VegaEstimator{Oracle: oracle}.Estimate(ctx, index, leg, dividends, base.Price)
	if err != nil {
		return Greeks{}, err
	}
	return Greeks{Price: base.Price, Delta: base.Delta, Gamma: base.Gamma, Vega: vega}, nil
}
