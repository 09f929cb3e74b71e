// Package application 编排策略估值与行情查询用例
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/logger"
	"github.com/wyfcoding/optionstrategy/pkg/metrics"
)

// StrategyService 策略估值服务
type StrategyService struct {
	oracle    domain.PricingOracle
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	timeout   time.Duration
	now       func() time.Time
}

// Option 服务可选配置
type Option func(*StrategyService)

// WithPublisher 估值完成后发布事件
func WithPublisher(p domain.EventPublisher) Option {
	return func(s *StrategyService) { s.publisher = p }
}

// WithMetrics 记录估值指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *StrategyService) { s.metrics = m }
}

// WithTimeout 单次估值的定价超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(s *StrategyService) { s.timeout = d }
}

// WithClock 替换当前时间来源，决定默认估值日
func WithClock(now func() time.Time) Option {
	return func(s *StrategyService) { s.now = now }
}

// NewStrategyService 创建策略估值服务
func NewStrategyService(oracle domain.PricingOracle, opts ...Option) *StrategyService {
	s := &StrategyService{oracle: oracle, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate 对一组期权腿定价、汇总希腊字母、分类策略并调整报价。
// 各腿定价并行执行，结果按输入顺序排列；任一腿失败则整个请求失败。
func (s *StrategyService) Evaluate(ctx context.Context, cmd EvaluateCommand) (report *Report, err error) {
	start := time.Now()
	defer func() {
		s.record(ctx, err, time.Since(start))
	}()

	session := domain.NewSession(s.now(), s.instrumented())
	ev, err := build(cmd, session)
	if err != nil {
		return nil, err
	}
	legs := ev.portfolio.Legs

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	greeks, err := priceLegs(ctx, session.Oracle, legs, ev.dividends)
	if err != nil {
		return nil, err
	}

	table := domain.Aggregate(legs, greeks)
	sums := domain.SumVolatility(legs, greeks)
	class := domain.Classify(legs)
	adj, err := domain.AdjustQuotes(legs, greeks, ev.snapshot)
	if err != nil {
		return nil, err
	}

	report = &Report{
		EvaluationID:   uuid.New().String(),
		Display:        domain.BuildDisplay(ev.portfolio.Ticker, legs, class, adj.NetBid, adj.NetAsk),
		Classification: class,
		Legs:           make([]LegReport, len(legs)),
		Table:          table,
		AdjBid:         adj.AdjBid,
		AdjAsk:         adj.AdjAsk,
		AdjBidVol:      adj.AdjBidVol,
		AdjAskVol:      adj.AdjAskVol,
		SumVol:         sums.SumVol,
		SumVega:        sums.SumVega,
		SumAdjBidVol:   adj.SumAdjBidVol,
		SumAdjAskVol:   adj.SumAdjAskVol,
		NetAdjBid:      adj.NetBid,
		NetAdjAsk:      adj.NetAsk,
		NetPrice:       table.NetPrice(),
	}
	for i, g := range greeks {
		report.Legs[i] = LegReport{
			Token:     class.Tokens[i],
			Price:     g.Price,
			Delta:     g.Delta,
			Gamma:     g.Gamma,
			Vega:      g.Vega,
			AdjBid:    adj.AdjBid[i],
			AdjAsk:    adj.AdjAsk[i],
			AdjBidVol: adj.AdjBidVol[i],
			AdjAskVol: adj.AdjAskVol[i],
		}
	}

	if !class.Matched && s.metrics != nil {
		s.metrics.UnclassifiedTotal.Inc()
	}
	s.publish(ctx, ev.portfolio, report)

	logger.Info(ctx, "strategy evaluated",
		"evaluation_id", report.EvaluationID,
		"ticker", ev.portfolio.Ticker,
		"pattern", class.Pattern,
		"code", class.Label(),
		"legs", len(legs),
		"net_price", report.NetPrice,
	)
	return report, nil
}

// priceLegs 并行计算每腿希腊字母 (基准价 + vega 重定价)
func priceLegs(ctx context.Context, oracle domain.PricingOracle, legs []domain.OptionLeg, dividends []domain.DividendEvent) ([]domain.Greeks, error) {
	greeks := make([]domain.Greeks, len(legs))
	g, gctx := errgroup.WithContext(ctx)
	for i, leg := range legs {
		g.Go(func() error {
			res, err := domain.LegGreeks(gctx, oracle, i, leg, dividends)
			if err != nil {
				return err
			}
			greeks[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return greeks, nil
}

func (s *StrategyService) publish(ctx context.Context, p *domain.Portfolio, r *Report) {
	if s.publisher == nil {
		return
	}
	event := domain.StrategyEvaluatedEvent{
		EvaluationID: r.EvaluationID,
		Ticker:       p.Ticker,
		Code:         r.Classification.Label(),
		Display:      r.Display,
		NetPrice:     r.NetPrice,
		NetBid:       r.NetAdjBid,
		NetAsk:       r.NetAdjAsk,
		LegCount:     len(p.Legs),
		OccurredOn:   s.now(),
	}
	if err := s.publisher.PublishStrategyEvaluated(ctx, event); err != nil {
		logger.Warn(ctx, "failed to publish strategy evaluated event",
			"evaluation_id", r.EvaluationID,
			"error", err,
		)
	}
}

func (s *StrategyService) record(ctx context.Context, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
		attrs := []any{"error", err}
		if ee, ok := domain.AsEngineError(err); ok {
			result = ee.Kind.String()
			attrs = append(attrs, "kind", ee.Kind.String(), "leg_index", ee.LegIndex)
		}
		logger.Error(ctx, "strategy evaluation failed", attrs...)
	}
	if s.metrics != nil {
		s.metrics.RecordEvaluation(result, d.Seconds())
	}
}

// instrumented 为定价引擎调用计数
func (s *StrategyService) instrumented() domain.PricingOracle {
	if s.metrics == nil {
		return s.oracle
	}
	return countingOracle{next: s.oracle, m: s.metrics}
}

type countingOracle struct {
	next domain.PricingOracle
	m    *metrics.Metrics
}

func (o countingOracle) Price(ctx context.Context, in domain.PricingInput) (domain.PriceResult, error) {
	o.m.OracleCallsTotal.Inc()
	res, err := o.next.Price(ctx, in)
	if err != nil {
		o.m.OracleFailuresTotal.Inc()
	}
	return res, err
}
