package domain

import "fmt"

// LegQuote 单腿市场报价；MidVol 为小数形式的中间隐含波动率
type LegQuote struct {
	Bid    float64
	Ask    float64
	MidVol float64
}

// MarketSnapshot 整个组合共享的标的参考价与逐腿报价
type MarketSnapshot struct {
	Spot   float64
	Quotes []LegQuote
}

// QuoteAdjustment 调整后的逐腿报价、隐含波动率与组合净报价
type QuoteAdjustment struct {
	AdjBid       []float64
	AdjAsk       []float64
	AdjBidVol    []float64
	AdjAskVol    []float64
	SumAdjBidVol float64
	SumAdjAskVol float64
	NetBid       float64
	NetAsk       float64
}

// AdjustQuotes 用 delta 把市场报价平移到参考现货，再用 vega 反推买卖隐含波动率。
// 空头腿交叉买卖价；净报价每步累加后重新保留 2 位小数。
// vega 为 0 时返回带腿下标的 ComputationError。
func AdjustQuotes(legs []OptionLeg, greeks []Greeks, snap MarketSnapshot) (QuoteAdjustment, error) {
	if len(snap.Quotes) != len(legs) {
		return QuoteAdjustment{}, NewEngineError(KindMarketDataGap, -1, "adjust",
			fmt.Errorf("got %d quotes for %d legs", len(snap.Quotes), len(legs)))
	}
	n := len(legs)
	out := QuoteAdjustment{
		AdjBid:    make([]float64, n),
		AdjAsk:    make([]float64, n),
		AdjBidVol: make([]float64, n),
		AdjAskVol: make([]float64, n),
	}
	var bidVolSum, askVolSum float64
	for i, leg := range legs {
		g := greeks[i]
		if g.Vega == 0 {
			return QuoteAdjustment{}, NewEngineError(KindComputation, i, "adjust", fmt.Errorf("vega is zero, implied volatility undefined"))
		}
		shift := g.Delta * (snap.Spot - leg.Spot)
		q := snap.Quotes[i]
		out.AdjBid[i] = round3(q.Bid - shift)
		out.AdjAsk[i] = round3(q.Ask - shift)
		out.AdjBidVol[i] = round3((leg.Volatility - (g.Price-out.AdjBid[i])/g.Vega) * 100)
		out.AdjAskVol[i] = round3((leg.Volatility - (g.Price-out.AdjAsk[i])/g.Vega) * 100)
		bidVolSum += out.AdjBidVol[i]
		askVolSum += out.AdjAskVol[i]
	}
	out.SumAdjBidVol = round2(bidVolSum)
	out.SumAdjAskVol = round2(askVolSum)

	for i, leg := range legs {
		m := float64(leg.Multiplier)
		if leg.Multiplier >= 1 {
			out.NetBid = round2(out.NetBid + out.AdjBid[i]*m)
			out.NetAsk = round2(out.NetAsk + out.AdjAsk[i]*m)
		} else {
			out.NetBid = round2(out.NetBid + out.AdjAsk[i]*m)
			out.NetAsk = round2(out.NetAsk + out.AdjBid[i]*m)
		}
	}
	return out, nil
}
