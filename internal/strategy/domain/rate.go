package domain

import (
	"fmt"
	"strings"
)

// Tenor 掉期曲线上的一个期限点
type Tenor struct {
	Ticker string `json:"ticker"`
	Label  string `json:"label"`
	Days   int    `json:"days"`
}

// TenorRate 期限点及其报价 (百分数)
type TenorRate struct {
	Tenor
	Rate float64 `json:"rate"`
}

const swapSuffix = " BGN Curncy"

func tenors(prefix string, codes, labels []string, days []int) []Tenor {
	out := make([]Tenor, len(codes))
	for i := range codes {
		out[i] = Tenor{Ticker: prefix + codes[i] + swapSuffix, Label: labels[i], Days: days[i]}
	}
	return out
}

// currencyTenors 固定的 EUR / GBp / CHF 掉期期限表，只用于挑选单一贴现利率
var currencyTenors = map[string][]Tenor{
	"EUR": tenors("EESWE",
		[]string{"1Z", "2Z", "A", "B", "C", "F", "I", "1", "1F", "2", "3"},
		[]string{"1 WK", "2 WK", "1 MO", "2 MO", "3 MO", "6 MO", "9 MO", "12 MO", "18 MO", "2 YR", "3 YR"},
		[]int{7, 14, 30, 60, 90, 180, 270, 360, 540, 720, 1080}),
	"GBP": tenors("BPSWS",
		[]string{"1Z", "2Z", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "1", "1F", "2", "3"},
		[]string{"1 WK", "2 WK", "1 MO", "2 MO", "3 MO", "4 MO", "5 MO", "6 MO", "7 MO", "8 MO", "9 MO", "10 MO", "11 MO", "12 MO", "18 MO", "2 YR", "3 YR"},
		[]int{7, 14, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330, 360, 540, 720, 1080}),
	"CHF": tenors("SFSNT",
		[]string{"1Z", "2Z", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "1", "1C", "1F", "1I", "2", "3"},
		[]string{"1 WK", "2 W", "1 MO", "2 MO", "3 MO", "4 MO", "5 MO", "6 MO", "7 MO", "8 MO", "9 MO", "10 MO", "11 MO", "12 MO", "15 MO", "18 MO", "21 MO", "2 YR", "3 YR"},
		[]int{7, 14, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330, 360, 450, 540, 630, 720, 1080}),
}

// CurrencyTenors 返回货币对应的期限表副本。GBp (便士报价) 与 GBP 共用一张表。
func CurrencyTenors(currency string) ([]Tenor, error) {
	t, ok := currencyTenors[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		return nil, NewEngineError(KindInvalidInput, -1, "rates", fmt.Errorf("no tenor table for currency %q", currency))
	}
	return append([]Tenor(nil), t...), nil
}

// ClosestTenor 选出天数与 days 最接近的期限点，距离相同时取靠前者
func ClosestTenor(rates []TenorRate, days int) (TenorRate, error) {
	if len(rates) == 0 {
		return TenorRate{}, NewEngineError(KindMarketDataGap, -1, "rates", fmt.Errorf("empty rate table"))
	}
	best := 0
	for i := 1; i < len(rates); i++ {
		if absInt(rates[i].Days-days) < absInt(rates[best].Days-days) {
			best = i
		}
	}
	return rates[best], nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
