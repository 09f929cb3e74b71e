package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wyfcoding/optionstrategy/internal/strategy/application"
)

var printer = message.NewPrinter(language.English)

func formatFloat(v float64, places int) string {
	return printer.Sprintf("%."+strconv.Itoa(places)+"f", v)
}

// renderReport 逐腿明细、合计行与一行展示串
func renderReport(w io.Writer, r *application.Report) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Leg", "Token", "Price", "Delta", "Gamma", "Vega", "Adj Bid", "Adj Ask", "Bid Vol", "Ask Vol"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, leg := range r.Legs {
		row := r.Table.Rows[i]
		table.Append([]string{
			strconv.Itoa(i + 1),
			leg.Token,
			formatFloat(row.Price, 2),
			formatFloat(row.Delta, 2),
			formatFloat(row.Gamma, 2),
			formatFloat(row.Vega, 2),
			formatFloat(leg.AdjBid, 3),
			formatFloat(leg.AdjAsk, 3),
			formatFloat(leg.AdjBidVol, 3),
			formatFloat(leg.AdjAskVol, 3),
		})
	}
	t := r.Table.Total
	table.SetFooter([]string{
		"", "Total",
		formatFloat(t.Price, 2),
		formatFloat(t.Delta, 2),
		formatFloat(t.Gamma, 2),
		formatFloat(t.Vega, 2),
		formatFloat(r.NetAdjBid, 2),
		formatFloat(r.NetAdjAsk, 2),
		formatFloat(r.SumAdjBidVol, 2),
		formatFloat(r.SumAdjAskVol, 2),
	})
	table.Render()

	_, err := fmt.Fprintf(w, "\n%s\nnet price %s  sum vol %s  sum vega %s\n",
		r.Display, formatFloat(r.NetPrice, 2), formatFloat(r.SumVol, 3), formatFloat(r.SumVega, 3))
	return err
}

func renderQuotes(w io.Writer, snap *application.QuoteSnapshot) error {
	if _, err := fmt.Fprintf(w, "%s spot %s\n", snap.Ticker, formatFloat(snap.Spot, 2)); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Instrument", "Bid", "Ask", "Mid Vol"})
	for _, q := range snap.Quotes {
		table.Append([]string{q.InstrumentID, formatFloat(q.Bid, 2), formatFloat(q.Ask, 2), formatFloat(q.MidVol, 3)})
	}
	table.Render()
	return nil
}
