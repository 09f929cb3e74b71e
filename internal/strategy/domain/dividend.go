package domain

// AlignDividends 选出除息日不晚于该腿到期日的分红，保持原顺序；
// 没有符合条件的分红时返回估值日、金额为 0 的占位事件，保证定价调用永远拿到非空列表。
func AlignDividends(leg OptionLeg, events []DividendEvent) []DividendEvent {
	aligned := make([]DividendEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Date.After(leg.ExpiryDate) {
			aligned = append(aligned, ev)
		}
	}
	if len(aligned) == 0 {
		aligned = append(aligned, DividendEvent{Date: leg.ValuationDate, Amount: 0})
	}
	return aligned
}
