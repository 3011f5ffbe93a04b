package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// CampaignsMarkdown renders every wheel campaign, one section per ticker,
// with the per-campaign ledger and its event timeline.
func CampaignsMarkdown(a *mechanics.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Wheel Campaigns")
	if len(a.WheelTickers) == 0 {
		doc.PlainText("No wheel campaigns detected.")
		return doc.String()
	}

	for _, ticker := range a.WheelTickers {
		doc.H2(ticker)
		for i, c := range a.Campaigns[ticker] {
			doc.H3(campaignTitle(i, c))

			rows := [][]string{
				{"Entered", c.Entry.String()},
				{"Realized P&L", c.RealizedPnL().SignedString()},
				{"Share Gains", c.RealizedShares.SignedString()},
				{"Premiums", c.Premiums.SignedString()},
				{"Dividends", c.Dividends.SignedString()},
			}
			if c.IsOpen() {
				rows = append(rows,
					[]string{"Shares Held", c.Shares.String()},
					[]string{"Blended Basis", c.BlendedBasis().String()},
					[]string{"Effective Basis", c.EffectiveBasis().String()},
				)
			} else {
				rows = append(rows, []string{"Exited", c.Exit.String()})
			}
			doc.Table(md.TableSet{
				Alignment: []md.TableAlignment{
					md.AlignLeft,
					md.AlignRight,
				},
				Header: []string{"Field", "Value"},
				Rows:   rows,
			})

			if c.Orphaned {
				doc.PlainText(md.Bold("Warning:") + " share count could not be reconciled with recorded purchases.")
			}

			if len(c.Events) > 0 {
				table := md.TableSet{
					Alignment: []md.TableAlignment{
						md.AlignLeft,
						md.AlignLeft,
						md.AlignLeft,
						md.AlignRight,
					},
					Header: []string{"Date", "Event", "Detail", "Cash"},
				}
				for _, ev := range c.Events {
					cash := ""
					if !ev.Cash.IsZero() {
						cash = ev.Cash.SignedString()
					}
					table.Rows = append(table.Rows, []string{
						ev.Date.String(),
						string(ev.Kind),
						ev.Detail,
						cash,
					})
				}
				doc.Table(table)
			}
		}
	}

	return doc.String()
}

func campaignTitle(i int, c mechanics.Campaign) string {
	state := "closed"
	switch {
	case c.Lifetime:
		state = "lifetime"
	case c.IsOpen():
		state = "open"
	}
	return fmt.Sprintf("Campaign %d (%s)", i+1, state)
}
