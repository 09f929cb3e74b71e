package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearOracle 价格随波动率线性变化，vega 精确可知
type linearOracle struct {
	mu    sync.Mutex
	calls []PricingInput
	slope float64
	delta float64
	err   error
}

func (o *linearOracle) Price(_ context.Context, in PricingInput) (PriceResult, error) {
	o.mu.Lock()
	o.calls = append(o.calls, in)
	o.mu.Unlock()
	if o.err != nil {
		return PriceResult{}, o.err
	}
	return PriceResult{
		Price: o.slope*in.Leg.Volatility + in.Leg.Strike/1000,
		Delta: o.delta,
		Gamma: 0.0012345,
	}, nil
}

func TestPriceLeg_RoundsAndAlignsDividends(t *testing.T) {
	o := &linearOracle{slope: 100, delta: 0.51234}
	leg := mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25)
	divs := []DividendEvent{
		{Date: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), Amount: 12},
		{Date: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), Amount: 15},
	}

	res, err := PriceLeg(context.Background(), o, 0, leg, divs)
	require.NoError(t, err)
	assert.Equal(t, 24.3, res.Price)
	assert.Equal(t, 0.512, res.Delta)
	assert.Equal(t, 0.001, res.Gamma)

	require.Len(t, o.calls, 1)
	assert.Equal(t, divs[:1], o.calls[0].Dividends)
}

func TestPriceLeg_OracleFailure(t *testing.T) {
	o := &linearOracle{err: errors.New("engine unavailable")}
	_, err := PriceLeg(context.Background(), o, 2, mkLeg(t, ExerciseAmerican, RightPut, 1, 4300, mar25), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPricingFailure)

	ee, ok := AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, 2, ee.LegIndex)
	assert.Equal(t, KindPricingFailure, ee.Kind)
	assert.Contains(t, err.Error(), "engine unavailable")
}

func TestLegGreeks_VegaFromBump(t *testing.T) {
	o := &linearOracle{slope: 100, delta: 0.5}
	leg := mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25)

	g, err := LegGreeks(context.Background(), o, 0, leg, nil)
	require.NoError(t, err)
	assert.Equal(t, 24.3, g.Price)
	assert.Equal(t, 100.0, g.Vega)

	require.Len(t, o.calls, 2)
	assert.Equal(t, 0.2, o.calls[0].Leg.Volatility)
	assert.InDelta(t, 0.202, o.calls[1].Leg.Volatility, 1e-12)
	// 重定价只改变波动率
	bumped := o.calls[1].Leg
	bumped.Volatility = leg.Volatility
	assert.Equal(t, leg, bumped)
}

func TestVegaEstimator_DegenerateVolatility(t *testing.T) {
	o := &linearOracle{slope: 100}
	leg := OptionLeg{
		ValuationDate: valuation, ExpiryDate: mar25, Spot: 100, Strike: 100,
		Volatility: 5e-324, Style: ExerciseEuropean, Right: RightCall, Multiplier: 1,
	}
	_, err := VegaEstimator{Oracle: o}.Estimate(context.Background(), 1, leg, nil, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, o.calls)
}

func TestAlignDividends(t *testing.T) {
	leg := mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25)

	got := AlignDividends(leg, nil)
	assert.Equal(t, []DividendEvent{{Date: valuation, Amount: 0}}, got)

	onExpiry := DividendEvent{Date: mar25, Amount: 3}
	late := DividendEvent{Date: jun25, Amount: 4}
	assert.Equal(t, []DividendEvent{onExpiry}, AlignDividends(leg, []DividendEvent{late, onExpiry}))
	assert.Equal(t, []DividendEvent{{Date: valuation}}, AlignDividends(leg, []DividendEvent{late}))
}

func TestAggregate_RoundsCellsBeforeSumming(t *testing.T) {
	legs := []OptionLeg{
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25),
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4400, mar25),
	}
	greeks := []Greeks{
		{Price: 1.005, Delta: 0.333, Gamma: 0.001, Vega: 10.004},
		{Price: 1.005, Delta: 0.333, Gamma: 0.001, Vega: 10.004},
	}
	table := Aggregate(legs, greeks)
	assert.Equal(t, GreeksRow{Price: 1.01, Delta: 0.33, Gamma: 0, Vega: 10}, table.Rows[0])
	assert.Equal(t, 2.02, table.Total.Price)
	assert.Equal(t, 0.66, table.Total.Delta)
	assert.Equal(t, 20.0, table.Total.Vega)
	assert.Equal(t, table.Total.Price, table.NetPrice())

	// 纯函数，重复调用结果一致
	assert.Equal(t, table, Aggregate(legs, greeks))
}

func TestAggregate_SignedMultipliers(t *testing.T) {
	legs := []OptionLeg{
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25),
		mkLeg(t, ExerciseEuropean, RightCall, -2, 4400, mar25),
	}
	greeks := []Greeks{
		{Price: 120.456, Delta: 0.55, Gamma: 0.002, Vega: 812.3},
		{Price: 80.123, Delta: 0.45, Gamma: 0.002, Vega: 790.1},
	}
	table := Aggregate(legs, greeks)
	assert.Equal(t, -160.25, table.Rows[1].Price)
	assert.Equal(t, -0.9, table.Rows[1].Delta)
	assert.Equal(t, -39.79, table.Total.Price)
	assert.Equal(t, -0.35, table.Total.Delta)
	assert.Equal(t, -767.9, table.Total.Vega)
}

func TestSumVolatility(t *testing.T) {
	legs := []OptionLeg{
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25),
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4400, mar25),
	}
	greeks := []Greeks{{Vega: 10.0004}, {Vega: 10.0004}}
	sums := SumVolatility(legs, greeks)
	assert.Equal(t, 20.0, sums.SumVega)
	assert.Equal(t, 0.4, sums.SumVol)
}

func TestAdjustQuotes(t *testing.T) {
	legs := []OptionLeg{
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25),
		mkLeg(t, ExerciseEuropean, RightCall, -1, 4400, mar25),
	}
	greeks := []Greeks{
		{Price: 24.3, Delta: 0.5, Vega: 100},
		{Price: 24.4, Delta: 0.4, Vega: 100},
	}
	snap := MarketSnapshot{Spot: 4310, Quotes: []LegQuote{{Bid: 28, Ask: 30}, {Bid: 20, Ask: 21}}}

	adj, err := AdjustQuotes(legs, greeks, snap)
	require.NoError(t, err)
	assert.Equal(t, []float64{23, 16}, adj.AdjBid)
	assert.Equal(t, []float64{25, 17}, adj.AdjAsk)
	assert.Equal(t, []float64{18.7, 11.6}, adj.AdjBidVol)
	assert.Equal(t, []float64{20.7, 12.6}, adj.AdjAskVol)
	assert.Equal(t, 30.3, adj.SumAdjBidVol)
	assert.Equal(t, 33.3, adj.SumAdjAskVol)
	// 空头腿交叉：净买价用空头腿的卖价
	assert.Equal(t, 6.0, adj.NetBid)
	assert.Equal(t, 9.0, adj.NetAsk)
}

func TestAdjustQuotes_ZeroVega(t *testing.T) {
	legs := []OptionLeg{
		mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25),
		mkLeg(t, ExerciseEuropean, RightCall, -1, 4400, mar25),
	}
	greeks := []Greeks{{Price: 24.3, Delta: 0.5, Vega: 100}, {Price: 0, Delta: 0, Vega: 0}}
	snap := MarketSnapshot{Spot: 4300, Quotes: []LegQuote{{Bid: 1, Ask: 2}, {Bid: 1, Ask: 2}}}

	_, err := AdjustQuotes(legs, greeks, snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputation)
	ee, ok := AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, 1, ee.LegIndex)
}

func TestAdjustQuotes_QuoteCountMismatch(t *testing.T) {
	legs := []OptionLeg{mkLeg(t, ExerciseEuropean, RightCall, 1, 4300, mar25)}
	_, err := AdjustQuotes(legs, []Greeks{{Vega: 1}}, MarketSnapshot{Spot: 4300})
	assert.ErrorIs(t, err, ErrMarketDataGap)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.01, Round(1.005, 2))
	assert.Equal(t, -2.346, Round(-2.3455, 3))
	assert.Equal(t, 3.0, Round(2.9999, 3))
}
