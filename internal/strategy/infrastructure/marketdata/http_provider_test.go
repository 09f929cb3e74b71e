package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/config"
)

func newBridge(t *testing.T) *HTTPProvider {
	t.Helper()
	mux := http.NewServeMux()
	json := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			h(w, r)
		}
	}
	mux.HandleFunc("/spot/SX5E", json(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"price": 4321.5}`))
	}))
	mux.HandleFunc("/dividends/SX5E", json(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"dividends": [{"date": "2025-04-17", "amount": 12.5}, {"date": "2025-09-19", "amount": 3}]}`))
	}))
	mux.HandleFunc("/chain/SX5E", json(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"instruments": ["SX5E 03/21/25 C4300 Index", "SX5E 03/21/25 P4300 Index"]}`))
	}))
	mux.HandleFunc("/currency/SX5E", json(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"currency": "EUR"}`))
	}))
	mux.HandleFunc("/quote", json(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "SX5E 03/21/25 C4300 Index" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "unknown instrument"}`))
			return
		}
		assert.Equal(t, "BID,ASK,IVOL_MID", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"values": {"BID": 101.2, "ASK": 103.4, "IVOL_MID": 18.25}}`))
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewHTTPProvider(config.MarketDataConfig{BaseURL: srv.URL, TimeoutMs: 2000})
}

func TestHTTPProviderUnderlying(t *testing.T) {
	p := newBridge(t)
	ctx := context.Background()

	spot, err := p.GetSpot(ctx, "SX5E")
	require.NoError(t, err)
	assert.Equal(t, 4321.5, spot)

	divs, err := p.GetDividendHistory(ctx, "SX5E")
	require.NoError(t, err)
	require.Len(t, divs, 2)
	assert.Equal(t, time.Date(2025, 4, 17, 0, 0, 0, 0, time.UTC), divs[0].Date)
	assert.Equal(t, 12.5, divs[0].Amount)

	chain, err := p.GetOptionChain(ctx, "SX5E")
	require.NoError(t, err)
	assert.Len(t, chain, 2)

	ccy, err := p.GetCurrency(ctx, "SX5E")
	require.NoError(t, err)
	assert.Equal(t, "EUR", ccy)
}

func TestHTTPProviderQuote(t *testing.T) {
	p := newBridge(t)

	values, err := p.GetQuote(context.Background(), "SX5E 03/21/25 C4300 Index", []string{domain.FieldBid, domain.FieldAsk, domain.FieldIvolMid})
	require.NoError(t, err)
	assert.Equal(t, 101.2, values[domain.FieldBid])
	assert.Equal(t, 18.25, values[domain.FieldIvolMid])

	_, err = p.GetQuote(context.Background(), "missing", []string{domain.FieldBid})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMarketDataGap))
	assert.Contains(t, err.Error(), "unknown instrument")
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider()
	p.SetUnderlying("ABC", Underlying{Spot: 10, Currency: "CHF", Chain: []string{"ABC C10"}})
	p.SetQuote("ABC C10", map[string]float64{domain.FieldBid: 1, domain.FieldAsk: 1.2})

	spot, err := p.GetSpot(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, 10.0, spot)

	q, err := p.GetQuote(context.Background(), "ABC C10", []string{domain.FieldBid, domain.FieldIvolMid})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{domain.FieldBid: 1}, q)

	_, err = p.GetSpot(context.Background(), "XYZ")
	assert.ErrorIs(t, err, domain.ErrMarketDataGap)
}
