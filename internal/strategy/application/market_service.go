package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/logger"
	"github.com/wyfcoding/optionstrategy/pkg/metrics"
)

// quoteConcurrency 批量报价时对行情源的并发上限
const quoteConcurrency = 8

// MarketService 行情查询服务：标的快照、行权价列表、批量报价与贴现利率
type MarketService struct {
	provider domain.MarketDataProvider
	metrics  *metrics.Metrics
}

// NewMarketService 创建行情查询服务，m 可为 nil
func NewMarketService(provider domain.MarketDataProvider, m *metrics.Metrics) *MarketService {
	return &MarketService{provider: provider, metrics: m}
}

// gap 把非领域错误统一包装为 MarketDataGap
func gap(op string, leg int, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := domain.AsEngineError(err); ok {
		if leg >= 0 && ee.LegIndex < 0 {
			return domain.NewEngineError(ee.Kind, leg, ee.Op, ee.Err)
		}
		return err
	}
	return domain.NewEngineError(domain.KindMarketDataGap, leg, op, err)
}

func (s *MarketService) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordMarketData(op, err)
	}
}

func normalizeTicker(ticker string) (string, error) {
	t := strings.TrimSpace(ticker)
	if t == "" {
		return "", domain.NewEngineError(domain.KindInvalidInput, -1, "market", fmt.Errorf("ticker is required"))
	}
	return t, nil
}

// Underlying 取标的现价、分红、货币及该货币的期限利率表
func (s *MarketService) Underlying(ctx context.Context, ticker string) (*domain.UnderlyingSnapshot, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	defer logger.LogDuration(ctx, "underlying snapshot", "ticker", ticker)()

	snap := &domain.UnderlyingSnapshot{Ticker: ticker}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		spot, err := s.provider.GetSpot(gctx, ticker)
		s.observe("spot", err)
		snap.Spot = spot
		return gap("spot", -1, err)
	})
	g.Go(func() error {
		divs, err := s.provider.GetDividendHistory(gctx, ticker)
		s.observe("dividends", err)
		snap.Dividends = divs
		return gap("dividends", -1, err)
	})
	g.Go(func() error {
		ccy, err := s.provider.GetCurrency(gctx, ticker)
		s.observe("currency", err)
		snap.Currency = ccy
		return gap("currency", -1, err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rates, err := s.RateTable(ctx, snap.Currency)
	if err != nil {
		return nil, err
	}
	snap.Rates = rates
	return snap, nil
}

// RateTable 逐期限点读取 PX_LAST，返回顺序与期限表一致
func (s *MarketService) RateTable(ctx context.Context, currency string) ([]domain.TenorRate, error) {
	tenors, err := domain.CurrencyTenors(currency)
	if err != nil {
		return nil, err
	}
	rates := make([]domain.TenorRate, len(tenors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	for i, t := range tenors {
		g.Go(func() error {
			fields, err := s.provider.GetQuote(gctx, t.Ticker, []string{domain.FieldLast})
			s.observe("rate", err)
			if err != nil {
				return gap("rates", -1, err)
			}
			px, ok := fields[domain.FieldLast]
			if !ok {
				return domain.NewEngineError(domain.KindMarketDataGap, -1, "rates", fmt.Errorf("%s: field %s missing", t.Ticker, domain.FieldLast))
			}
			rates[i] = domain.TenorRate{Tenor: t, Rate: px}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rates, nil
}

// DiscountRate 按估值日到到期日的天数挑选最接近的期限利率，返回小数形式
func (s *MarketService) DiscountRate(ctx context.Context, ticker string, valuation, maturity time.Time) (*DiscountRate, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	if maturity.Before(valuation) {
		return nil, domain.NewEngineError(domain.KindInvalidInput, -1, "rates", fmt.Errorf("maturity %s before valuation %s",
			maturity.Format(domain.DateLayout), valuation.Format(domain.DateLayout)))
	}
	ccy, err := s.provider.GetCurrency(ctx, ticker)
	s.observe("currency", err)
	if err != nil {
		return nil, gap("currency", -1, err)
	}
	rates, err := s.RateTable(ctx, ccy)
	if err != nil {
		return nil, err
	}
	days := domain.DaysBetween(valuation, maturity)
	tenor, err := domain.ClosestTenor(rates, days)
	if err != nil {
		return nil, err
	}
	return &DiscountRate{Currency: ccy, Days: days, Tenor: tenor, Rate: tenor.Rate / 100}, nil
}

// Strikes 返回期权链中包含 filter 的合约代码
func (s *MarketService) Strikes(ctx context.Context, ticker, filter string) ([]string, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	chain, err := s.provider.GetOptionChain(ctx, ticker)
	s.observe("chain", err)
	if err != nil {
		return nil, gap("chain", -1, err)
	}
	return domain.FilterStrikes(chain, filter), nil
}

// Quotes 批量刷新标的现价与合约 BID/ASK/IVOL_MID；错误携带合约在请求中的序号
func (s *MarketService) Quotes(ctx context.Context, cmd QuotesCommand) (*QuoteSnapshot, error) {
	ticker, err := normalizeTicker(cmd.Ticker)
	if err != nil {
		return nil, err
	}
	if len(cmd.Instruments) == 0 {
		return nil, domain.NewEngineError(domain.KindInvalidInput, -1, "quote", fmt.Errorf("no instruments requested"))
	}

	out := &QuoteSnapshot{Ticker: ticker, Quotes: make([]domain.InstrumentQuote, len(cmd.Instruments))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	g.Go(func() error {
		spot, err := s.provider.GetSpot(gctx, ticker)
		s.observe("spot", err)
		out.Spot = spot
		return gap("spot", -1, err)
	})
	fields := []string{domain.FieldBid, domain.FieldAsk, domain.FieldIvolMid}
	for i, id := range cmd.Instruments {
		g.Go(func() error {
			raw, err := s.provider.GetQuote(gctx, id, fields)
			s.observe("quote", err)
			if err != nil {
				return gap("quote", i, err)
			}
			q, err := domain.QuoteFromFields(i, id, raw)
			if err != nil {
				return err
			}
			out.Quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
