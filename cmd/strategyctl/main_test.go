package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionstrategy/internal/strategy/application"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/pricing"
)

const straddle = `
ticker: SX5E
valuation_date: "2025-01-15"
market_spot: 4310
legs:
  - expiry_date: "2025-03-21"
    spot: 4300
    strike: 4300
    volatility: 0.18
    rate: 0.028
    exercise_style: E
    right: C
    multiplier: 1
    bid: 160
    ask: 164
  - expiry_date: "2025-03-21"
    spot: 4300
    strike: 4300
    volatility: 0.18
    rate: 0.028
    exercise_style: E
    right: P
    multiplier: 1
    bid: 120
    ask: 124
dividends:
  - date: "2025-02-20"
    amount: 4.5
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRequest(t *testing.T) {
	req, err := loadRequest(writeFile(t, straddle))
	require.NoError(t, err)
	assert.Equal(t, "SX5E", req.Ticker)
	require.Len(t, req.Legs, 2)
	assert.Equal(t, 4300.0, *req.Legs[1].Strike)
	assert.Equal(t, "P", req.Legs[1].Right)
	assert.Equal(t, 4310.0, *req.MarketSpot)

	_, err = loadRequest(writeFile(t, straddle+"today: 2025-01-15\n"))
	assert.ErrorContains(t, err, "today")
}

func TestRenderReport(t *testing.T) {
	req, err := loadRequest(writeFile(t, straddle))
	require.NoError(t, err)
	svc := application.NewStrategyService(pricing.NewEngine(100),
		application.WithClock(func() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) }))
	report, err := svc.Evaluate(context.Background(), *req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "SX5E MAR25 4300 ESTD REF 4300 ")
	assert.Contains(t, out, "+C")
	assert.Contains(t, out, "+P")
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1,234.50", formatFloat(1234.5, 2))
	assert.Equal(t, "-0.125", formatFloat(-0.125, 3))
}
