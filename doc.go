// Package mechanics reconstructs what a wheel trader actually did from a
// broker statement: which tickers ran wheel campaigns, how option positions
// were rolled, which groups of legs formed one trade, and what each of them
// realized.
//
// The package is a pure accounting engine. It takes normalized transaction
// records (see the ingest subpackage for the CSV side), never touches market
// data, and produces results that are deterministic for a given statement:
// the same rows in always yield the same campaigns, trades and IDs out.
//
// The stages, in the order Compute runs them:
//
//   - LotBook matches share rows first-in-first-out and emits one realized
//     event per matched lot.
//   - BuildCampaigns detects wheel campaigns, spans of share ownership with
//     premium collected against them, and attributes option and income cash
//     to the campaign whose span covers it.
//   - BuildChains links option positions kept alive by rolling into chains.
//   - BuildClosedTrades groups legs that traded as one unit, names the
//     strategy they opened as, and scores capture, annualized return and
//     capital at risk.
//   - ComputeWindowMetrics aggregates realized P&L over half-open date
//     windows; adjacent windows always partition a period exactly.
//
// All quantities and cash amounts are exact decimals. Positions are
// considered flat within a configurable epsilon, because broker exports
// carry fractional-share dust.
package mechanics
