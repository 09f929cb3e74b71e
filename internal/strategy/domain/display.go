package domain

import "strings"

// BuildDisplay 渲染交易员可读的一行策略描述：
// "<TICKER> <MONYY> <STRIKES> <CODE> REF <SPOT> <BID>/<ASK>"。
// 未分类时只返回 Unclassified，数值结果仍由调用方单独返回。
func BuildDisplay(ticker string, legs []OptionLeg, c Classification, netBid, netAsk float64) string {
	if !c.Matched || len(legs) == 0 {
		return Unclassified
	}
	parts := make([]string, 0, 7)
	if t := strings.TrimSpace(ticker); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts,
		c.MaturityDisplay,
		c.StrikeDisplay,
		string(c.Code),
		"REF",
		FormatNumber(legs[0].Spot),
		FormatNumber(netBid)+"/"+FormatNumber(netAsk),
	)
	return strings.Join(parts, " ")
}
