// 包 domain 多腿期权策略的领域模型：腿、分红、组合、希腊字母与策略分类。
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ExerciseStyle 行权方式
type ExerciseStyle string

const (
	ExerciseEuropean ExerciseStyle = "EUROPEAN" // 欧式
	ExerciseAmerican ExerciseStyle = "AMERICAN" // 美式
)

// OptionRight 期权方向 (CALL/PUT)
type OptionRight string

const (
	RightCall OptionRight = "CALL" // 看涨期权
	RightPut  OptionRight = "PUT"  // 看跌期权
)

// ParseExerciseStyle 解析行权方式，兼容 E/A 简写
func ParseExerciseStyle(s string) (ExerciseStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EUROPEAN", "E":
		return ExerciseEuropean, nil
	case "AMERICAN", "A":
		return ExerciseAmerican, nil
	}
	return "", fmt.Errorf("unknown exercise style %q", s)
}

// ParseOptionRight 解析期权方向，兼容 C/P 简写
func ParseOptionRight(s string) (OptionRight, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C":
		return RightCall, nil
	case "PUT", "P":
		return RightPut, nil
	}
	return "", fmt.Errorf("unknown option right %q", s)
}

// OptionLeg 策略中的一条期权腿，构造后不可变
type OptionLeg struct {
	ValuationDate time.Time
	ExpiryDate    time.Time
	Spot          float64
	Strike        float64
	Volatility    float64 // 小数形式，例如 0.22
	Rate          float64 // 年化无风险利率
	Style         ExerciseStyle
	Right         OptionRight
	Multiplier    int // 带符号数量，绝对值 > 1 表示比例腿
}

// NewOptionLeg 校验并创建期权腿
func NewOptionLeg(valuation, expiry time.Time, spot, strike, vol, rate float64, style ExerciseStyle, right OptionRight, multiplier int) (OptionLeg, error) {
	leg := OptionLeg{
		ValuationDate: truncateDay(valuation),
		ExpiryDate:    truncateDay(expiry),
		Spot:          spot,
		Strike:        strike,
		Volatility:    vol,
		Rate:          rate,
		Style:         style,
		Right:         right,
		Multiplier:    multiplier,
	}
	if err := leg.Validate(); err != nil {
		return OptionLeg{}, err
	}
	return leg, nil
}

// Validate 校验腿的不变量
func (l OptionLeg) Validate() error {
	switch {
	case l.Multiplier == 0:
		return fmt.Errorf("multiplier must be nonzero")
	case l.Volatility <= 0:
		return fmt.Errorf("volatility must be positive, got %v", l.Volatility)
	case l.Spot <= 0:
		return fmt.Errorf("spot must be positive, got %v", l.Spot)
	case l.Strike <= 0:
		return fmt.Errorf("strike must be positive, got %v", l.Strike)
	case l.ExpiryDate.Before(l.ValuationDate):
		return fmt.Errorf("expiry %s is before valuation date %s", l.ExpiryDate.Format(DateLayout), l.ValuationDate.Format(DateLayout))
	case l.Style != ExerciseEuropean && l.Style != ExerciseAmerican:
		return fmt.Errorf("unknown exercise style %q", l.Style)
	case l.Right != RightCall && l.Right != RightPut:
		return fmt.Errorf("unknown option right %q", l.Right)
	}
	return nil
}

// IsLong 多头腿
func (l OptionLeg) IsLong() bool { return l.Multiplier > 0 }

// WithVolatility 返回替换波动率后的副本，用于 vega 重定价
func (l OptionLeg) WithVolatility(vol float64) OptionLeg {
	l.Volatility = vol
	return l
}

// DividendEvent 分红事件（除息日, 每股金额）
type DividendEvent struct {
	Date   time.Time
	Amount float64
}

// Portfolio 有序的期权腿集合，顺序即交易员录入顺序
type Portfolio struct {
	Ticker string
	Legs   []OptionLeg
}

// NewPortfolio 校验并创建组合：至少一条腿且估值日一致
func NewPortfolio(ticker string, legs []OptionLeg) (*Portfolio, error) {
	if len(legs) == 0 {
		return nil, NewEngineError(KindInvalidInput, -1, "portfolio", fmt.Errorf("portfolio has no legs"))
	}
	first := legs[0].ValuationDate
	for i, leg := range legs {
		if err := leg.Validate(); err != nil {
			return nil, NewEngineError(KindInvalidInput, i, "portfolio", err)
		}
		if !leg.ValuationDate.Equal(first) {
			return nil, NewEngineError(KindInvalidInput, i, "portfolio",
				fmt.Errorf("valuation date %s differs from first leg %s", leg.ValuationDate.Format(DateLayout), first.Format(DateLayout)))
		}
	}
	return &Portfolio{Ticker: ticker, Legs: legs}, nil
}

// ValuationDate 组合估值日
func (p *Portfolio) ValuationDate() time.Time {
	return p.Legs[0].ValuationDate
}

// DateLayout 请求中日期的统一格式
const DateLayout = "2006-01-02"

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
