package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// TradesMarkdown renders the closed-trade log, newest close last.
func TradesMarkdown(a *mechanics.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Closed Trades")
	if len(a.Trades) == 0 {
		doc.PlainText("No closed trades.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{
			"Ticker", "Strategy", "Opened", "Closed",
			"Days", "P&L", "Capture", "Annualized", "Exit",
		},
	}
	for _, t := range a.Trades {
		capture := ""
		if t.Credit {
			capture = fmt.Sprintf("%.1f%%", t.CapturePct)
		}
		table.Rows = append(table.Rows, []string{
			t.Underlying,
			string(t.Strategy),
			t.OpenDate.String(),
			t.CloseDate.String(),
			fmt.Sprintf("%d", t.DaysHeld),
			t.NetPnL.SignedString(),
			capture,
			fmt.Sprintf("%.1f%%", t.AnnualizedPct),
			string(t.CloseKind),
		})
	}
	doc.Table(table)

	doc.H2("Risk")
	risk := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Ticker", "Strategy", "Risk", "Capital at Risk", "Premium / Day"},
	}
	for _, t := range a.Trades {
		kind := "undefined"
		if t.DefinedRisk {
			kind = "defined"
		}
		risk.Rows = append(risk.Rows, []string{
			t.Underlying,
			string(t.Strategy),
			kind,
			t.CapitalRisk.String(),
			t.PremiumPerDay.SignedString(),
		})
	}
	doc.Table(risk)

	return doc.String()
}
