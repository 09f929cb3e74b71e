// Package marketdata 实现 domain.MarketDataProvider：HTTP 行情终端桥接与内存静态数据源
package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/config"
)

type spotResponse struct {
	Price float64 `json:"price"`
}

type dividendItem struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type dividendResponse struct {
	Dividends []dividendItem `json:"dividends"`
}

type chainResponse struct {
	Instruments []string `json:"instruments"`
}

type quoteResponse struct {
	Values map[string]float64 `json:"values"`
}

type currencyResponse struct {
	Currency string `json:"currency"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// HTTPProvider 通过 HTTP 桥接访问行情终端
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider 创建行情桥接客户端，超时与重试来自配置
func NewHTTPProvider(cfg config.MarketDataConfig) *HTTPProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")
	return &HTTPProvider{client: client}
}

func (p *HTTPProvider) get(ctx context.Context, op, path string, out any, params map[string]string, query map[string]string) error {
	var apiErr errorResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(params).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr).
		ForceContentType("application/json").
		Get(path)
	if err != nil {
		return domain.NewEngineError(domain.KindMarketDataGap, -1, op, err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status()
		}
		return domain.NewEngineError(domain.KindMarketDataGap, -1, op, fmt.Errorf("bridge returned %d: %s", resp.StatusCode(), msg))
	}
	return nil
}

// GetSpot 标的最新价
func (p *HTTPProvider) GetSpot(ctx context.Context, ticker string) (float64, error) {
	var out spotResponse
	if err := p.get(ctx, "spot", "/spot/{ticker}", &out, map[string]string{"ticker": ticker}, nil); err != nil {
		return 0, err
	}
	return out.Price, nil
}

// GetDividendHistory 分红历史，日期格式 YYYY-MM-DD
func (p *HTTPProvider) GetDividendHistory(ctx context.Context, ticker string) ([]domain.DividendEvent, error) {
	var out dividendResponse
	if err := p.get(ctx, "dividends", "/dividends/{ticker}", &out, map[string]string{"ticker": ticker}, nil); err != nil {
		return nil, err
	}
	events := make([]domain.DividendEvent, 0, len(out.Dividends))
	for i, d := range out.Dividends {
		date, err := time.Parse(domain.DateLayout, d.Date)
		if err != nil {
			return nil, domain.NewEngineError(domain.KindMarketDataGap, -1, "dividends", fmt.Errorf("dividend %d: %w", i, err))
		}
		events = append(events, domain.DividendEvent{Date: date, Amount: d.Amount})
	}
	return events, nil
}

// GetOptionChain 期权链合约代码
func (p *HTTPProvider) GetOptionChain(ctx context.Context, ticker string) ([]string, error) {
	var out chainResponse
	if err := p.get(ctx, "chain", "/chain/{ticker}", &out, map[string]string{"ticker": ticker}, nil); err != nil {
		return nil, err
	}
	return out.Instruments, nil
}

// GetQuote 按字段查询合约报价
func (p *HTTPProvider) GetQuote(ctx context.Context, instrumentID string, fields []string) (map[string]float64, error) {
	var out quoteResponse
	query := map[string]string{"id": instrumentID, "fields": strings.Join(fields, ",")}
	if err := p.get(ctx, "quote", "/quote", &out, nil, query); err != nil {
		return nil, err
	}
	if out.Values == nil {
		out.Values = map[string]float64{}
	}
	return out.Values, nil
}

// GetCurrency 标的计价货币
func (p *HTTPProvider) GetCurrency(ctx context.Context, ticker string) (string, error) {
	var out currencyResponse
	if err := p.get(ctx, "currency", "/currency/{ticker}", &out, map[string]string{"ticker": ticker}, nil); err != nil {
		return "", err
	}
	return out.Currency, nil
}
