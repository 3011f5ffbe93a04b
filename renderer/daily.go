package renderer

import (
	"bytes"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// DailyMarkdown renders the per-day realized P&L series of a window.
func DailyMarkdown(series []mechanics.DailyPnL) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Daily Realized P&L")
	if len(series) == 0 {
		doc.PlainText("Nothing realized in this window.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Date", "Realized"},
	}
	var total mechanics.Money
	for _, d := range series {
		table.Rows = append(table.Rows, []string{d.Date.String(), d.Realized.SignedString()})
		total = total.Add(d.Realized)
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), md.Bold(total.SignedString())})
	doc.Table(table)

	return doc.String()
}
