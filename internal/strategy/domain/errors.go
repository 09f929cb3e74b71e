package domain

import (
	"errors"
	"fmt"
)

// 错误分类哨兵，配合 errors.Is 使用
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrPricingFailure = errors.New("pricing oracle failure")
	ErrComputation    = errors.New("computation error")
	ErrMarketDataGap  = errors.New("market data gap")
)

// ErrorKind 引擎错误类别
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota
	KindPricingFailure
	KindComputation
	KindMarketDataGap
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindPricingFailure:
		return ErrPricingFailure
	case KindComputation:
		return ErrComputation
	case KindMarketDataGap:
		return ErrMarketDataGap
	default:
		return ErrInvalidInput
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindPricingFailure:
		return "pricing_failure"
	case KindComputation:
		return "computation"
	case KindMarketDataGap:
		return "market_data_gap"
	default:
		return "invalid_input"
	}
}

// EngineError 结构化错误，LegIndex 为 -1 表示与具体腿无关
type EngineError struct {
	Kind     ErrorKind
	LegIndex int
	Op       string
	Err      error
}

// NewEngineError 创建结构化错误
func NewEngineError(kind ErrorKind, legIndex int, op string, err error) *EngineError {
	return &EngineError{Kind: kind, LegIndex: legIndex, Op: op, Err: err}
}

func (e *EngineError) Error() string {
	if e.LegIndex >= 0 {
		return fmt.Sprintf("%s: leg %d: %s: %v", e.Op, e.LegIndex, e.Kind.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind.sentinel(), e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// AsEngineError 从错误链中提取 EngineError
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
