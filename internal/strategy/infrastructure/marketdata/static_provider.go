package marketdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// Underlying 静态数据源中的一个标的
type Underlying struct {
	Spot      float64
	Currency  string
	Dividends []domain.DividendEvent
	Chain     []string
}

// StaticProvider 内存行情数据源，用于命令行工具与测试
type StaticProvider struct {
	mu          sync.RWMutex
	underlyings map[string]Underlying
	quotes      map[string]map[string]float64
}

// NewStaticProvider 创建空数据源
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		underlyings: make(map[string]Underlying),
		quotes:      make(map[string]map[string]float64),
	}
}

// SetUnderlying 设置标的数据
func (p *StaticProvider) SetUnderlying(ticker string, u Underlying) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.underlyings[ticker] = u
}

// SetQuote 设置合约或利率代码的字段值
func (p *StaticProvider) SetQuote(id string, fields map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make(map[string]float64, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	p.quotes[id] = cp
}

func (p *StaticProvider) underlying(op, ticker string) (Underlying, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.underlyings[ticker]
	if !ok {
		return Underlying{}, domain.NewEngineError(domain.KindMarketDataGap, -1, op, fmt.Errorf("unknown ticker %q", ticker))
	}
	return u, nil
}

// GetSpot 标的最新价
func (p *StaticProvider) GetSpot(_ context.Context, ticker string) (float64, error) {
	u, err := p.underlying("spot", ticker)
	return u.Spot, err
}

// GetDividendHistory 分红历史
func (p *StaticProvider) GetDividendHistory(_ context.Context, ticker string) ([]domain.DividendEvent, error) {
	u, err := p.underlying("dividends", ticker)
	if err != nil {
		return nil, err
	}
	return append([]domain.DividendEvent(nil), u.Dividends...), nil
}

// GetOptionChain 期权链
func (p *StaticProvider) GetOptionChain(_ context.Context, ticker string) ([]string, error) {
	u, err := p.underlying("chain", ticker)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), u.Chain...), nil
}

// GetQuote 只返回已知字段
func (p *StaticProvider) GetQuote(_ context.Context, instrumentID string, fields []string) (map[string]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.quotes[instrumentID]
	if !ok {
		return nil, domain.NewEngineError(domain.KindMarketDataGap, -1, "quote", fmt.Errorf("unknown instrument %q", instrumentID))
	}
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		if v, ok := q[f]; ok {
			out[f] = v
		}
	}
	return out, nil
}

// GetCurrency 计价货币
func (p *StaticProvider) GetCurrency(_ context.Context, ticker string) (string, error) {
	u, err := p.underlying("currency", ticker)
	return u.Currency, err
}
