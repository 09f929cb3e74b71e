package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// evaluation 校验后的强类型请求
type evaluation struct {
	portfolio *domain.Portfolio
	dividends []domain.DividendEvent
	snapshot  domain.MarketSnapshot
}

func invalid(leg int, format string, args ...any) error {
	return domain.NewEngineError(domain.KindInvalidInput, leg, "build", fmt.Errorf(format, args...))
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, strings.TrimSpace(s))
}

// build 一次性校验边界输入并逐腿构造 OptionLeg。
// 缺失行情 (bid/ask/market_spot) 视为 MarketDataGap，在任何调整计算之前返回。
func build(cmd EvaluateCommand, session domain.Session) (*evaluation, error) {
	if len(cmd.Legs) == 0 {
		return nil, invalid(-1, "portfolio has no legs")
	}

	defaultValuation := session.ValuationDate
	if cmd.ValuationDate != "" {
		d, err := parseDate(cmd.ValuationDate)
		if err != nil {
			return nil, invalid(-1, "valuation_date: %v", err)
		}
		defaultValuation = d
	}

	legs := make([]domain.OptionLeg, len(cmd.Legs))
	quotes := make([]domain.LegQuote, len(cmd.Legs))
	for i, in := range cmd.Legs {
		leg, err := buildLeg(i, in, defaultValuation)
		if err != nil {
			return nil, err
		}
		legs[i] = leg
	}

	portfolio, err := domain.NewPortfolio(strings.TrimSpace(cmd.Ticker), legs)
	if err != nil {
		return nil, err
	}

	dividends := make([]domain.DividendEvent, len(cmd.Dividends))
	for i, d := range cmd.Dividends {
		date, err := parseDate(d.Date)
		if err != nil {
			return nil, invalid(-1, "dividend %d: %v", i, err)
		}
		if d.Amount < 0 {
			return nil, invalid(-1, "dividend %d: negative amount %v", i, d.Amount)
		}
		dividends[i] = domain.DividendEvent{Date: date, Amount: d.Amount}
	}

	if cmd.MarketSpot == nil {
		return nil, domain.NewEngineError(domain.KindMarketDataGap, -1, "build", fmt.Errorf("market_spot missing"))
	}
	for i, in := range cmd.Legs {
		switch {
		case in.Bid == nil:
			return nil, domain.NewEngineError(domain.KindMarketDataGap, i, "build", fmt.Errorf("bid missing"))
		case in.Ask == nil:
			return nil, domain.NewEngineError(domain.KindMarketDataGap, i, "build", fmt.Errorf("ask missing"))
		}
		quotes[i] = domain.LegQuote{Bid: *in.Bid, Ask: *in.Ask}
	}

	return &evaluation{
		portfolio: portfolio,
		dividends: dividends,
		snapshot:  domain.MarketSnapshot{Spot: *cmd.MarketSpot, Quotes: quotes},
	}, nil
}

func buildLeg(i int, in LegInput, defaultValuation time.Time) (domain.OptionLeg, error) {
	valuation := defaultValuation
	if in.ValuationDate != "" {
		d, err := parseDate(in.ValuationDate)
		if err != nil {
			return domain.OptionLeg{}, invalid(i, "valuation_date: %v", err)
		}
		valuation = d
	}
	expiry, err := parseDate(in.ExpiryDate)
	if err != nil {
		return domain.OptionLeg{}, invalid(i, "expiry_date: %v", err)
	}
	required := []struct {
		name string
		v    *float64
	}{{"spot", in.Spot}, {"strike", in.Strike}, {"volatility", in.Volatility}, {"rate", in.Rate}}
	for _, f := range required {
		if f.v == nil {
			return domain.OptionLeg{}, invalid(i, "%s is required", f.name)
		}
	}
	style, err := domain.ParseExerciseStyle(in.ExerciseStyle)
	if err != nil {
		return domain.OptionLeg{}, invalid(i, "%v", err)
	}
	right, err := domain.ParseOptionRight(in.Right)
	if err != nil {
		return domain.OptionLeg{}, invalid(i, "%v", err)
	}
	leg, err := domain.NewOptionLeg(valuation, expiry, *in.Spot, *in.Strike, *in.Volatility, *in.Rate, style, right, in.Multiplier)
	if err != nil {
		return domain.OptionLeg{}, invalid(i, "%v", err)
	}
	return leg, nil
}
