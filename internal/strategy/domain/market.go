package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// 报价字段名
const (
	FieldBid     = "BID"
	FieldAsk     = "ASK"
	FieldIvolMid = "IVOL_MID"
	FieldLast    = "PX_LAST"
)

// MarketDataProvider 外部行情终端的只读接口
type MarketDataProvider interface {
	// GetSpot 标的最新价
	GetSpot(ctx context.Context, ticker string) (float64, error)
	// GetDividendHistory 历史与预期分红 (除息日, 金额)
	GetDividendHistory(ctx context.Context, ticker string) ([]DividendEvent, error)
	// GetOptionChain 期权链合约代码，保持提供方顺序
	GetOptionChain(ctx context.Context, ticker string) ([]string, error)
	// GetQuote 按字段取合约报价，缺失字段不出现在返回的 map 中
	GetQuote(ctx context.Context, instrumentID string, fields []string) (map[string]float64, error)
	// GetCurrency 标的计价货币
	GetCurrency(ctx context.Context, ticker string) (string, error)
}

// FilterStrikes 返回包含 substr 的合约代码，顺序不变；substr 为空时返回全部
func FilterStrikes(chain []string, substr string) []string {
	out := make([]string, 0, len(chain))
	for _, id := range chain {
		if strings.Contains(id, substr) {
			out = append(out, id)
		}
	}
	return out
}

// InstrumentQuote 单个合约的报价快照
type InstrumentQuote struct {
	InstrumentID string  `json:"instrument_id"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	MidVol       float64 `json:"mid_vol"`
}

// QuoteFromFields 把原始字段转换为报价；IVOL_MID 以百分数给出，转为小数并保留 3 位。
// 任一字段缺失返回 MarketDataGap。
func QuoteFromFields(index int, id string, fields map[string]float64) (InstrumentQuote, error) {
	q := InstrumentQuote{InstrumentID: id}
	for _, f := range []string{FieldBid, FieldAsk, FieldIvolMid} {
		if _, ok := fields[f]; !ok {
			return InstrumentQuote{}, NewEngineError(KindMarketDataGap, index, "quote", fmt.Errorf("%s: field %s missing", id, f))
		}
	}
	q.Bid = fields[FieldBid]
	q.Ask = fields[FieldAsk]
	q.MidVol = round3(fields[FieldIvolMid] / 100)
	return q, nil
}

// UnderlyingSnapshot 标的快照：现价、分红与对应货币的期限利率表
type UnderlyingSnapshot struct {
	Ticker    string          `json:"ticker"`
	Spot      float64         `json:"spot"`
	Currency  string          `json:"currency"`
	Dividends []DividendEvent `json:"dividends"`
	Rates     []TenorRate     `json:"rates"`
}

// DaysBetween 两个日期相差的自然日数 (绝对值)
func DaysBetween(a, b time.Time) int {
	d := truncateDay(b).Sub(truncateDay(a)).Hours() / 24
	if d < 0 {
		d = -d
	}
	return int(d + 0.5)
}
