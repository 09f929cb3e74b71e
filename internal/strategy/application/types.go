package application

import (
	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// LegInput 单腿输入；指针字段用于区分缺失与零值
type LegInput struct {
	ValuationDate string   `json:"valuation_date,omitempty" yaml:"valuation_date,omitempty"`
	ExpiryDate    string   `json:"expiry_date" yaml:"expiry_date" binding:"required"`
	Spot          *float64 `json:"spot" yaml:"spot" binding:"required"`
	Strike        *float64 `json:"strike" yaml:"strike" binding:"required"`
	Volatility    *float64 `json:"volatility" yaml:"volatility" binding:"required"`
	Rate          *float64 `json:"rate" yaml:"rate" binding:"required"`
	ExerciseStyle string   `json:"exercise_style" yaml:"exercise_style" binding:"required"`
	Right         string   `json:"right" yaml:"right" binding:"required"`
	Multiplier    int      `json:"multiplier" yaml:"multiplier" binding:"required"`
	Bid           *float64 `json:"bid" yaml:"bid"`
	Ask           *float64 `json:"ask" yaml:"ask"`
}

// DividendInput 分红输入，日期格式 YYYY-MM-DD
type DividendInput struct {
	Date   string  `json:"date" yaml:"date" binding:"required"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// EvaluateCommand 策略估值命令
type EvaluateCommand struct {
	Ticker        string          `json:"ticker" yaml:"ticker"`
	ValuationDate string          `json:"valuation_date,omitempty" yaml:"valuation_date,omitempty"`
	MarketSpot    *float64        `json:"market_spot" yaml:"market_spot" binding:"required"`
	Legs          []LegInput      `json:"legs" yaml:"legs" binding:"required,min=1,dive"`
	Dividends     []DividendInput `json:"dividends" yaml:"dividends" binding:"dive"`
}

// LegReport 单腿明细
type LegReport struct {
	Token     string  `json:"token"`
	Price     float64 `json:"price"`
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Vega      float64 `json:"vega"`
	AdjBid    float64 `json:"adj_bid"`
	AdjAsk    float64 `json:"adj_ask"`
	AdjBidVol float64 `json:"adj_bid_vol"`
	AdjAskVol float64 `json:"adj_ask_vol"`
}

// Report 估值结果
type Report struct {
	EvaluationID   string                `json:"evaluation_id"`
	Display        string                `json:"display"`
	Classification domain.Classification `json:"classification"`
	Legs           []LegReport           `json:"legs"`
	Table          domain.GreeksTable    `json:"table"`
	AdjBid         []float64             `json:"adj_bid"`
	AdjAsk         []float64             `json:"adj_ask"`
	AdjBidVol      []float64             `json:"adj_bid_vol"`
	AdjAskVol      []float64             `json:"adj_ask_vol"`
	SumVol         float64               `json:"sum_vol"`
	SumVega        float64               `json:"sum_vega"`
	SumAdjBidVol   float64               `json:"sum_adj_bid_vol"`
	SumAdjAskVol   float64               `json:"sum_adj_ask_vol"`
	NetAdjBid      float64               `json:"net_adj_bid"`
	NetAdjAsk      float64               `json:"net_adj_ask"`
	NetPrice       float64               `json:"net_price"`
}

// QuotesCommand 批量刷新报价
type QuotesCommand struct {
	Ticker      string   `json:"ticker" binding:"required"`
	Instruments []string `json:"instruments" binding:"required,min=1"`
}

// QuoteSnapshot 标的现价与逐合约报价
type QuoteSnapshot struct {
	Ticker string                   `json:"ticker"`
	Spot   float64                  `json:"spot"`
	Quotes []domain.InstrumentQuote `json:"quotes"`
}

// DiscountRate 按到期日挑选出的贴现利率
type DiscountRate struct {
	Currency string           `json:"currency"`
	Days     int              `json:"days"`
	Tenor    domain.TenorRate `json:"tenor"`
	Rate     float64          `json:"rate"` // 小数形式
}
