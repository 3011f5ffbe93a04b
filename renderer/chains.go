package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// ChainsMarkdown renders the roll chains: every position kept alive by
// rolling, with its leg history.
func ChainsMarkdown(a *mechanics.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Roll Chains")
	if len(a.Chains) == 0 {
		doc.PlainText("No option roll chains.")
		return doc.String()
	}

	for _, c := range a.Chains {
		doc.H2(chainTitle(c))

		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignLeft,
			},
			Header: []string{"Date", "Symbol", "Action", "Qty", "Cash", "Note"},
		}
		for _, l := range c.Legs {
			note := ""
			if l.Companion {
				note = "companion"
			}
			table.Rows = append(table.Rows, []string{
				l.Date.String(),
				l.Symbol,
				string(l.Action),
				l.Quantity.String(),
				l.Cash.SignedString(),
				note,
			})
		}
		doc.Table(table)
	}

	return doc.String()
}

func chainTitle(c mechanics.Chain) string {
	state := "closed " + c.CloseDate().String()
	if c.Open {
		state = "open"
	}
	return fmt.Sprintf("%s %s from %s (%s, %d rolls, net %s)",
		c.Underlying, c.Right, c.OpenDate(), state, c.Rolls(), c.NetCredit().SignedString())
}
