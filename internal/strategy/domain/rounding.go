package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round 按十进制四舍五入到 places 位，避免二进制浮点的 0.xx5 偏差
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2(v float64) float64 { return Round(v, 2) }

func round3(v float64) float64 { return Round(v, 3) }
