// Package renderer turns analysis results into markdown reports.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/crux1s/mechanics"
)

// SummaryMarkdown renders the account-level report: realized totals, the
// window scorecard, and anything that needs the trader's attention.
func SummaryMarkdown(a *mechanics.Analysis, m mechanics.WindowMetrics) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Account Summary as of %s", a.AsOf))

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Realized"),
			md.Bold(a.TotalRealized().SignedString()),
		},
		Rows: [][]string{
			{"Closed Campaigns", a.ClosedCampaignPnL.SignedString()},
			{"Open Campaigns (banked)", a.OpenCampaignBanked.SignedString()},
			{"Standalone", a.StandalonePnL.SignedString()},
			{"Net Deposited", a.NetDeposited.String()},
			{"Capital Deployed", a.CapitalDeployed.String()},
			{"Realized Return", fmt.Sprintf("%.1f%%", a.RealizedROR())},
		},
	})

	doc.H2(fmt.Sprintf("Window %s to %s", m.Window.From, m.Window.To))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Window Realized"),
			md.Bold(m.Total.SignedString()),
		},
		Rows: [][]string{
			{"Options Flow", m.OptionsFlow.SignedString()},
			{"Equity Realized", m.EquityRealized.SignedString()},
			{"Dividends & Interest", m.Income.SignedString()},
		},
	})

	if m.TradesClosed > 0 {
		doc.H2("Trade Scorecard")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
			},
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Trades Closed", fmt.Sprintf("%d", m.TradesClosed)},
				{"Win Rate", fmt.Sprintf("%.1f%% (%d of %d)", m.WinRate, m.Wins, m.TradesClosed)},
				{"Median Capture", fmt.Sprintf("%.1f%%", m.MedianCapturePct)},
				{"Profit Factor", fmt.Sprintf("%.2f", m.ProfitFactor)},
				{"Median Premium / Day", m.MedianPremiumPerDay.String()},
			},
		})
	}

	if len(a.WheelTickers) > 0 {
		doc.H2("Wheel Tickers")
		doc.BulletList(a.WheelTickers...)
	}
	if len(a.PureOptionTickers) > 0 {
		doc.H2("Pure Option Tickers")
		doc.BulletList(a.PureOptionTickers...)
	}

	if len(a.Problems) > 0 {
		doc.H2("Data Problems")
		var lines []string
		for _, p := range a.Problems {
			lines = append(lines, fmt.Sprintf("%s: %v", p.Underlying, p.Err))
		}
		doc.BulletList(lines...)
	}

	return doc.String()
}
