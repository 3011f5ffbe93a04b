// Package ingest turns TastyTrade history-CSV exports into normalized
// ledger rows.
//
// The export is messy on purpose: quantities are unsigned with the direction
// hidden in Action and Description, money comes as currency strings, dates
// carry a timezone suffix, and corporate actions appear as zero-cost
// Receive Deliver pairs. Everything is straightened out here so the engine
// only ever sees clean, signed, day-granular rows.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/crux1s/mechanics"
	"github.com/crux1s/mechanics/date"
	"github.com/shopspring/decimal"
)

// Result is a parsed statement: normalized rows plus the warnings the
// corporate-action scan produced.
type Result struct {
	Records  []mechanics.TransactionRecord
	Warnings []string
}

// RowError reports a row the parser could not interpret.
type RowError struct {
	Row    int // 1-based CSV line, header excluded
	Reason string
}

func (e *RowError) Error() string { return fmt.Sprintf("csv row %d: %s", e.Row, e.Reason) }

var requiredColumns = []string{
	"Date", "Type", "Sub Type", "Action", "Symbol", "Instrument Type",
	"Description", "Quantity", "Total", "Underlying Symbol",
	"Expiration Date", "Strike Price", "Call or Put", "Order #",
}

var splitPatterns = []string{"FORWARD SPLIT", "REVERSE SPLIT", "STOCK SPLIT", "SPLIT"}

// ParseFile reads and normalizes a statement from disk.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()
	res, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// Parse reads a TastyTrade history CSV and returns normalized records in
// chronological order.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not a TastyTrade history export, missing columns: %s", strings.Join(missing, ", "))
	}

	res := &Result{}
	rowNum := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", rowNum+1, err)
		}
		rowNum++
		get := func(name string) string {
			i := col[name]
			if i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}
		rec, err := normalizeRow(get, rowNum)
		if err != nil {
			return nil, err
		}
		res.Records = append(res.Records, rec)
	}

	mechanics.SortRecords(res.Records)
	res.detectCorporateActions()
	return res, nil
}

func normalizeRow(get func(string) string, rowNum int) (mechanics.TransactionRecord, error) {
	var rec mechanics.TransactionRecord
	rec.Index = rowNum

	d, seq, err := parseStamp(get("Date"))
	if err != nil {
		return rec, &RowError{Row: rowNum, Reason: err.Error()}
	}
	rec.Date, rec.Seq = d, seq

	rec.Symbol = get("Symbol")
	rec.Underlying = get("Underlying Symbol")
	if rec.Underlying == "" && rec.Symbol != "" {
		rec.Underlying = strings.Fields(rec.Symbol)[0]
	}
	rec.Description = get("Description")
	rec.OrderID = get("Order #")

	switch it := get("Instrument Type"); {
	case it == "Equity":
		rec.Instrument = mechanics.Equity
	case it == "Future Option":
		rec.Instrument = mechanics.FutureOption
	case strings.Contains(it, "Option"):
		rec.Instrument = mechanics.EquityOption
	}

	value, err := cleanNumber(get("Total"))
	if err != nil {
		return rec, &RowError{Row: rowNum, Reason: fmt.Sprintf("bad Total %q", get("Total"))}
	}
	rec.Value = mechanics.M(value)

	qty, err := cleanNumber(get("Quantity"))
	if err != nil {
		return rec, &RowError{Row: rowNum, Reason: fmt.Sprintf("bad Quantity %q", get("Quantity"))}
	}

	if rec.Instrument == mechanics.EquityOption || rec.Instrument == mechanics.FutureOption {
		strike, err := cleanNumber(get("Strike Price"))
		if err != nil {
			return rec, &RowError{Row: rowNum, Reason: fmt.Sprintf("bad Strike Price %q", get("Strike Price"))}
		}
		rec.Strike = mechanics.M(strike)
		if exp := get("Expiration Date"); exp != "" {
			rec.Expiry, err = parseExpiry(exp)
			if err != nil {
				return rec, &RowError{Row: rowNum, Reason: err.Error()}
			}
		}
		switch strings.ToUpper(get("Call or Put")) {
		case "CALL", "C":
			rec.Right = mechanics.Call
		case "PUT", "P":
			rec.Right = mechanics.Put
		}
	}

	if err := classifyRow(&rec, get, qty); err != nil {
		return rec, &RowError{Row: rowNum, Reason: err.Error()}
	}
	if err := rec.Validate(); err != nil {
		return rec, &RowError{Row: rowNum, Reason: err.Error()}
	}
	return rec, nil
}

// classifyRow maps the export's Type/Sub Type/Action triple onto the
// engine's action vocabulary and signs the quantity.
func classifyRow(rec *mechanics.TransactionRecord, get func(string) string, qty decimal.Decimal) error {
	typ := get("Type")
	sub := strings.ToLower(get("Sub Type"))
	action := strings.ToUpper(get("Action"))
	dsc := strings.ToUpper(rec.Description)

	switch typ {
	case "Money Movement":
		switch {
		case sub == "dividend":
			rec.Action = mechanics.Dividend
		case strings.Contains(sub, "interest"):
			rec.Action = mechanics.Interest
		case sub == "deposit":
			rec.Action = mechanics.Deposit
		case sub == "withdrawal":
			rec.Action = mechanics.Withdrawal
		default:
			rec.Action = mechanics.Fee
		}
		return nil

	case "Trade", "Receive Deliver":
		signed, err := signQuantity(action, dsc, qty)
		if err != nil {
			// Zero-cost deliveries (ACATS, spin-offs) don't say which way
			// they went; they are receipts, and the corporate-action scan
			// flags their missing basis.
			if typ == "Receive Deliver" && rec.Value.IsZero() {
				signed = qty
			} else {
				return err
			}
		}
		rec.Quantity = mechanics.Q(signed)

		switch {
		case strings.Contains(sub, "assignment"):
			rec.Action = mechanics.Assignment
			rec.Disposition = mechanics.Close
		case strings.Contains(sub, "exercise"):
			rec.Action = mechanics.Exercise
			rec.Disposition = mechanics.Close
		case strings.Contains(sub, "expir"):
			rec.Action = mechanics.Expiration
			rec.Disposition = mechanics.Close
		case strings.Contains(action, "BUY"):
			rec.Action = mechanics.Buy
			rec.Disposition = disposition(action)
		case strings.Contains(action, "SELL"):
			rec.Action = mechanics.Sell
			rec.Disposition = disposition(action)
		default:
			// Splits, ACATS, spin-offs: resolved by the corporate-action
			// scan once the whole statement is in.
			rec.Action = mechanics.Transfer
		}
		return nil

	default:
		return fmt.Errorf("unrecognized transaction type %q", typ)
	}
}

func disposition(action string) mechanics.Disposition {
	switch {
	case strings.Contains(action, "TO_OPEN"):
		return mechanics.Open
	case strings.Contains(action, "TO_CLOSE"):
		return mechanics.Close
	}
	return mechanics.NoDisposition
}

// signQuantity applies the export's direction conventions: the Quantity
// column is unsigned, Action or Description says which way it went.
// Assignment removals deliver shares and count as receipts; split removals
// are neutralized here and reconstructed by the corporate-action scan.
func signQuantity(action, dsc string, qty decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case strings.Contains(action, "BUY"), strings.Contains(dsc, "BOUGHT"):
		return qty, nil
	case strings.Contains(action, "SELL"), strings.Contains(dsc, "SOLD"):
		return qty.Neg(), nil
	case strings.Contains(dsc, "REMOVAL"):
		if strings.Contains(dsc, "ASSIGNMENT") {
			return qty, nil
		}
		return qty.Neg(), nil
	case isSplitDescription(dsc):
		return qty, nil
	case qty.IsZero():
		return qty, nil
	}
	return qty, fmt.Errorf("unrecognized direction (action %q, description %q)", action, dsc)
}

func isSplitDescription(dsc string) bool {
	for _, p := range splitPatterns {
		if strings.Contains(dsc, p) {
			return true
		}
	}
	return false
}

// detectCorporateActions pairs zero-cost split removals with their matching
// additions and replaces each pair with one Split record carrying the
// broker's post-split position. Zero-cost deliveries that are not splits or
// assignments keep their rows but are surfaced as warnings: their missing
// basis overstates P&L on the eventual sale.
func (res *Result) detectCorporateActions() {
	type key struct {
		underlying string
		day        date.Date
	}
	type pair struct {
		removal, addition []int // record indices
	}
	pairs := map[key]*pair{}
	var order []key

	for i, r := range res.Records {
		if r.Instrument != mechanics.Equity || r.Action != mechanics.Transfer || !r.Value.IsZero() {
			continue
		}
		dsc := strings.ToUpper(r.Description)
		if !isSplitDescription(dsc) {
			if !strings.Contains(dsc, "ASSIGNMENT") && !strings.Contains(dsc, "REMOVAL") {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s %s: zero-cost delivery (%.80s), cost basis unknown", r.Date, r.Underlying, r.Description))
			}
			continue
		}
		k := key{r.Underlying, r.Date}
		p, ok := pairs[k]
		if !ok {
			p = &pair{}
			pairs[k] = p
			order = append(order, k)
		}
		if strings.Contains(dsc, "REMOVAL") {
			p.removal = append(p.removal, i)
		} else {
			p.addition = append(p.addition, i)
		}
	}

	drop := map[int]bool{}
	var splits []mechanics.TransactionRecord
	for _, k := range order {
		p := pairs[k]
		if len(p.removal) == 0 || len(p.addition) == 0 {
			// Half a split pair: neutralize it and tell the user rather
			// than let a phantom position change through.
			for _, i := range append(p.removal, p.addition...) {
				res.Records[i].Quantity = mechanics.Q(0)
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s %s: unmatched split row (%.80s)", k.day, k.underlying, res.Records[i].Description))
			}
			continue
		}
		post := decimal.Zero
		for _, i := range p.addition {
			post = post.Add(res.Records[i].Quantity.Decimal())
		}
		first := res.Records[p.addition[0]]
		splits = append(splits, mechanics.TransactionRecord{
			Date:        k.day,
			Seq:         first.Seq,
			Underlying:  k.underlying,
			Symbol:      k.underlying,
			Instrument:  mechanics.Equity,
			Action:      mechanics.Split,
			Quantity:    mechanics.Q(post),
			Description: first.Description,
			Index:       first.Index,
		})
		for _, i := range append(p.removal, p.addition...) {
			drop[i] = true
		}
	}
	if len(splits) == 0 {
		return
	}

	kept := res.Records[:0]
	for i, r := range res.Records {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	res.Records = append(kept, splits...)
	mechanics.SortRecords(res.Records)
}

// parseExpiry converts the export's Expiration Date column to a day.
func parseExpiry(s string) (date.Date, error) {
	d, _, err := parseStamp(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("bad Expiration Date %q", s)
	}
	return d, nil
}

// cleanNumber parses a TastyTrade currency string like "$1,234.56" or "--".
func cleanNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", "")
	if s == "" || s == "--" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

var stampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseStamp converts the export's timestamp to a naive UTC day plus an
// intra-day ordinal used for stable same-day ordering.
func parseStamp(s string) (date.Date, int, error) {
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return date.FromTime(utc), utc.Hour()*3600 + utc.Minute()*60 + utc.Second(), nil
		}
	}
	if len(s) >= 10 {
		if d, err := date.Parse(s[:10]); err == nil {
			return d, 0, nil
		}
	}
	return date.Date{}, 0, fmt.Errorf("unparseable date %q", s)
}
