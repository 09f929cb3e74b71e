package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

var (
	start   = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	oneYear = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

func leg(style domain.ExerciseStyle, right domain.OptionRight) domain.OptionLeg {
	return domain.OptionLeg{
		ValuationDate: start,
		ExpiryDate:    oneYear,
		Spot:          100,
		Strike:        100,
		Volatility:    0.2,
		Rate:          0.05,
		Style:         style,
		Right:         right,
		Multiplier:    1,
	}
}

func price(t *testing.T, e *Engine, l domain.OptionLeg, divs ...domain.DividendEvent) domain.PriceResult {
	t.Helper()
	res, err := e.Price(context.Background(), domain.PricingInput{Leg: l, Dividends: divs})
	require.NoError(t, err)
	return res
}

func TestBlackScholesMerton_ReferenceValues(t *testing.T) {
	e := NewEngine(0)
	call := price(t, e, leg(domain.ExerciseEuropean, domain.RightCall))
	assert.InDelta(t, 10.4506, call.Price, 1e-4)
	assert.InDelta(t, 0.6368, call.Delta, 1e-4)
	assert.InDelta(t, 0.01876, call.Gamma, 1e-5)

	put := price(t, e, leg(domain.ExerciseEuropean, domain.RightPut))
	assert.InDelta(t, 5.5735, put.Price, 1e-4)
	assert.InDelta(t, call.Delta-1, put.Delta, 1e-12)
	assert.InDelta(t, call.Gamma, put.Gamma, 1e-12)
}

func TestBlackScholesMerton_PutCallParityWithDividend(t *testing.T) {
	e := NewEngine(0)
	div := domain.DividendEvent{Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), Amount: 3}
	call := price(t, e, leg(domain.ExerciseEuropean, domain.RightCall), div)
	put := price(t, e, leg(domain.ExerciseEuropean, domain.RightPut), div)

	td := yearFraction(start, div.Date)
	forward := 100 - 3*math.Exp(-0.05*td) - 100*math.Exp(-0.05)
	assert.InDelta(t, forward, call.Price-put.Price, 1e-9)

	// 分红降低看涨价值
	plain := price(t, e, leg(domain.ExerciseEuropean, domain.RightCall))
	assert.Less(t, call.Price, plain.Price)
}

func TestCoxRossRubinstein(t *testing.T) {
	e := NewEngine(DefaultBinomialSteps)

	euroCall := price(t, e, leg(domain.ExerciseEuropean, domain.RightCall))
	amCall := price(t, e, leg(domain.ExerciseAmerican, domain.RightCall))
	assert.InDelta(t, euroCall.Price, amCall.Price, 0.02)
	assert.InDelta(t, euroCall.Delta, amCall.Delta, 0.01)
	assert.InDelta(t, euroCall.Gamma, amCall.Gamma, 0.002)

	euroPut := price(t, e, leg(domain.ExerciseEuropean, domain.RightPut))
	amPut := price(t, e, leg(domain.ExerciseAmerican, domain.RightPut))
	assert.Greater(t, amPut.Price, euroPut.Price)
	assert.InDelta(t, 6.09, amPut.Price, 0.02)
	assert.Less(t, amPut.Delta, 0.0)
}

func TestCoxRossRubinstein_DividendMakesEarlyExerciseValuable(t *testing.T) {
	e := NewEngine(300)
	div := domain.DividendEvent{Date: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), Amount: 10}
	l := leg(domain.ExerciseAmerican, domain.RightCall)
	l.Strike = 80

	am := price(t, e, l, div)
	l.Style = domain.ExerciseEuropean
	eu := price(t, e, l, div)
	assert.Greater(t, am.Price, eu.Price)
}

func TestEngine_ExpiryDayIsIntrinsic(t *testing.T) {
	e := NewEngine(0)
	for _, style := range []domain.ExerciseStyle{domain.ExerciseEuropean, domain.ExerciseAmerican} {
		l := leg(style, domain.RightCall)
		l.ExpiryDate = start
		l.Strike = 90
		res := price(t, e, l)
		assert.Equal(t, domain.PriceResult{Price: 10, Delta: 1}, res)

		l.Right = domain.RightPut
		res = price(t, e, l)
		assert.Equal(t, domain.PriceResult{}, res)
	}
}

func TestEngine_RejectsBadInput(t *testing.T) {
	e := NewEngine(0)

	l := leg(domain.ExerciseEuropean, domain.RightCall)
	l.Volatility = 0
	_, err := e.Price(context.Background(), domain.PricingInput{Leg: l})
	assert.ErrorContains(t, err, "volatility")

	l = leg(domain.ExerciseAmerican, domain.RightCall)
	_, err = e.Price(context.Background(), domain.PricingInput{Leg: l, Dividends: []domain.DividendEvent{
		{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Amount: 150},
	}})
	assert.ErrorContains(t, err, "exceeds spot")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Price(ctx, domain.PricingInput{Leg: leg(domain.ExerciseEuropean, domain.RightCall)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedule(t *testing.T) {
	l := leg(domain.ExerciseEuropean, domain.RightCall)
	events := []domain.DividendEvent{
		{Date: start, Amount: 5},
		{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Amount: 0},
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Amount: 2},
		{Date: oneYear, Amount: 1},
		{Date: oneYear.AddDate(0, 0, 1), Amount: 7},
	}
	got := schedule(l, events)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].amount)
	assert.InDelta(t, 1.0, got[1].t, 1e-12)
}
