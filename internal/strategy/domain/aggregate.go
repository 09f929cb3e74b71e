package domain

// GreeksRow 按乘数缩放后的单腿希腊字母，保留 2 位小数
type GreeksRow struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
}

// GreeksTable 每腿一行，外加列求和的合计行
type GreeksTable struct {
	Rows  []GreeksRow `json:"rows"`
	Total GreeksRow   `json:"total"`
}

// NetPrice 组合净价 = 合计行价格
func (t GreeksTable) NetPrice() float64 { return t.Total.Price }

// Aggregate 将每腿希腊字母乘以带符号乘数后逐格保留 2 位小数，再按列求和并保留 2 位小数。
// 先舍入再求和的顺序不可交换。greeks 与 legs 按下标一一对应。
func Aggregate(legs []OptionLeg, greeks []Greeks) GreeksTable {
	table := GreeksTable{Rows: make([]GreeksRow, len(legs))}
	var sum GreeksRow
	for i, leg := range legs {
		m := float64(leg.Multiplier)
		g := greeks[i]
		row := GreeksRow{
			Price: round2(g.Price * m),
			Delta: round2(g.Delta * m),
			Gamma: round2(g.Gamma * m),
			Vega:  round2(g.Vega * m),
		}
		table.Rows[i] = row
		sum.Price += row.Price
		sum.Delta += row.Delta
		sum.Gamma += row.Gamma
		sum.Vega += row.Vega
	}
	table.Total = GreeksRow{
		Price: round2(sum.Price),
		Delta: round2(sum.Delta),
		Gamma: round2(sum.Gamma),
		Vega:  round2(sum.Vega),
	}
	return table
}

// VolatilitySums 组合层面的波动率与 vega 汇总
type VolatilitySums struct {
	SumVol  float64 `json:"sum_vol"`
	SumVega float64 `json:"sum_vega"`
}

// SumVolatility SumVol 为各腿波动率之和 (3 位小数)；
// SumVega 为缩放后 vega 的累加，每步重新保留 3 位小数。
func SumVolatility(legs []OptionLeg, greeks []Greeks) VolatilitySums {
	var out VolatilitySums
	var vol float64
	for i, leg := range legs {
		vol += leg.Volatility
		out.SumVega = round3(out.SumVega + greeks[i].Vega*float64(leg.Multiplier))
	}
	out.SumVol = round3(vol)
	return out
}
