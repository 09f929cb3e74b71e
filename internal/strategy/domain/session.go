package domain

import "time"

// Session 单次请求的上下文：估值日与定价句柄，随调用显式传递，不使用进程级全局状态
type Session struct {
	ValuationDate time.Time
	Oracle        PricingOracle
}

// NewSession 创建请求级会话，估值日截断到 UTC 自然日
func NewSession(valuation time.Time, oracle PricingOracle) Session {
	return Session{ValuationDate: truncateDay(valuation), Oracle: oracle}
}
