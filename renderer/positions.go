package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// PositionsMarkdown renders the open option positions with their expiry
// alerts, one section per underlying.
func PositionsMarkdown(a *mechanics.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Open Positions")
	if len(a.OpenPositions) == 0 {
		doc.PlainText("No open option positions.")
		return doc.String()
	}

	for _, ou := range a.OpenPositions {
		doc.H2(fmt.Sprintf("%s (%s)", ou.Underlying, ou.Strategy))

		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignLeft,
				md.AlignRight,
				md.AlignLeft,
			},
			Header: []string{"Symbol", "Qty", "Strike", "Expiry", "DTE", "Alert"},
		}
		for _, p := range ou.Positions {
			alert := string(p.Alert)
			if p.Alert == mechanics.AlertCrit {
				alert = md.Bold(alert)
			}
			table.Rows = append(table.Rows, []string{
				p.Symbol,
				p.Quantity.String(),
				p.Strike.String(),
				p.Expiry.String(),
				fmt.Sprintf("%d", p.DTE),
				alert,
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
