package mechanics

import (
	"github.com/crux1s/mechanics/date"
)

// Strategy is the named structure a set of opening legs forms.
type Strategy string

const (
	ShortPut         Strategy = "Short Put"
	ShortCall        Strategy = "Short Call"
	CoveredCall      Strategy = "Covered Call"
	CoveredStrangle  Strategy = "Covered Strangle"
	CoveredStraddle  Strategy = "Covered Straddle"
	ShortStrangle    Strategy = "Short Strangle"
	ShortStraddle    Strategy = "Short Straddle"
	IronCondor       Strategy = "Iron Condor"
	JadeLizard       Strategy = "Jade Lizard"
	CallCreditSpread Strategy = "Call Credit Spread"
	CallDebitSpread  Strategy = "Call Debit Spread"
	PutCreditSpread  Strategy = "Put Credit Spread"
	PutDebitSpread   Strategy = "Put Debit Spread"
	CallButterfly    Strategy = "Call Butterfly"
	PutButterfly     Strategy = "Put Butterfly"
	CalendarSpread   Strategy = "Calendar Spread"
	LongCall         Strategy = "Long Call"
	LongPut          Strategy = "Long Put"
	LongStrangle     Strategy = "Long Strangle"
	OtherComplex     Strategy = "Other/Complex"
)

// LegSig summarizes one opening leg for classification.
type LegSig struct {
	Right  Right
	Short  bool
	Strike Money
	Expiry date.Date
	Qty    Quantity // contracts, absolute
}

// Classification is the classifier's verdict on a set of opening legs.
type Classification struct {
	Strategy    Strategy
	DefinedRisk bool
	CapitalRisk Money // worst-case capital the structure puts at stake, floored at $1
}

const contractMultiplier = 100

// Classify names the structure formed by a trade's opening legs. Credit is
// the net opening cash flow (positive for credit structures); covered means
// shares backed the position while it was on; underlying selects the
// cash-settled-index capital treatment.
//
// Specific multi-leg patterns are matched before single-leg fallbacks, so a
// jade lizard never reads as a short put plus noise.
func Classify(legs []LegSig, credit Money, covered bool, underlying string, cfg Config) Classification {
	var sc, sp, lc, lp []LegSig
	for _, l := range legs {
		switch {
		case l.Right == Call && l.Short:
			sc = append(sc, l)
		case l.Right == Call:
			lc = append(lc, l)
		case l.Right == Put && l.Short:
			sp = append(sp, l)
		default:
			lp = append(lp, l)
		}
	}

	c := Classification{Strategy: OtherComplex}
	switch {
	case len(legs) == 4 && len(sc) == 1 && len(sp) == 1 && len(lc) == 1 && len(lp) == 1 &&
		lp[0].Strike.LessThan(sp[0].Strike) && sp[0].Strike.LessThan(sc[0].Strike) && sc[0].Strike.LessThan(lc[0].Strike):
		c.Strategy = IronCondor
		c.DefinedRisk = true
		width := sp[0].Strike.Sub(lp[0].Strike).Max(lc[0].Strike.Sub(sc[0].Strike))
		c.CapitalRisk = width.Mul(Q(contractMultiplier)).Mul(sp[0].Qty).Sub(credit)

	case len(legs) == 3 && len(sp) == 1 && len(sc) == 1 && len(lc) == 1 &&
		sp[0].Strike.LessThan(sc[0].Strike) && sc[0].Strike.LessThan(lc[0].Strike):
		c.Strategy = JadeLizard
		c.CapitalRisk = sp[0].Strike.Mul(Q(contractMultiplier)).Mul(sp[0].Qty).Sub(credit)

	case isButterfly(sc, lc) && len(sp)+len(lp) == 0:
		c.Strategy = CallButterfly
		c.DefinedRisk = true
		c.CapitalRisk = butterflyRisk(lc, credit)

	case isButterfly(sp, lp) && len(sc)+len(lc) == 0:
		c.Strategy = PutButterfly
		c.DefinedRisk = true
		c.CapitalRisk = butterflyRisk(lp, credit)

	case len(legs) == 2 && len(sc) == 1 && len(sp) == 1:
		straddle := sc[0].Strike.Equal(sp[0].Strike) && sc[0].Expiry.Equal(sp[0].Expiry)
		switch {
		case covered && straddle:
			c.Strategy = CoveredStraddle
		case covered:
			c.Strategy = CoveredStrangle
		case straddle:
			c.Strategy = ShortStraddle
		default:
			c.Strategy = ShortStrangle
		}
		if covered {
			// The call is backed by shares; only the put side ties up cash.
			c.CapitalRisk = sp[0].Strike.Mul(Q(contractMultiplier)).Mul(sp[0].Qty).Sub(credit)
		} else {
			c.CapitalRisk = nakedShortRisk(legs, credit, underlying, cfg)
		}

	case len(legs) == 2 && len(lc) == 1 && len(lp) == 1:
		c.Strategy = LongStrangle
		c.DefinedRisk = true
		c.CapitalRisk = credit.Neg()

	case len(legs) == 2 && len(sc) == 1 && len(lc) == 1:
		c.classifyVertical(sc[0], lc[0], Call, credit)

	case len(legs) == 2 && len(sp) == 1 && len(lp) == 1:
		c.classifyVertical(sp[0], lp[0], Put, credit)

	case len(legs) == 1 && len(sc) == 1:
		if covered {
			c.Strategy = CoveredCall
			c.CapitalRisk = credit
		} else {
			c.Strategy = ShortCall
			c.CapitalRisk = nakedShortRisk(legs, credit, underlying, cfg)
		}

	case len(legs) == 1 && len(sp) == 1:
		c.Strategy = ShortPut
		c.CapitalRisk = nakedShortRisk(legs, credit, underlying, cfg)

	case len(legs) == 1 && len(lc) == 1:
		c.Strategy = LongCall
		c.DefinedRisk = true
		c.CapitalRisk = credit.Neg()

	case len(legs) == 1 && len(lp) == 1:
		c.Strategy = LongPut
		c.DefinedRisk = true
		c.CapitalRisk = credit.Neg()

	default:
		c.CapitalRisk = credit.Abs()
	}

	c.CapitalRisk = c.CapitalRisk.Max(M(1))
	return c
}

// classifyVertical names a two-leg same-right structure: a vertical when the
// expiries match, a calendar otherwise.
func (c *Classification) classifyVertical(short, long LegSig, right Right, credit Money) {
	c.DefinedRisk = true
	if !short.Expiry.Equal(long.Expiry) {
		c.Strategy = CalendarSpread
		c.CapitalRisk = credit.Neg().Max(credit)
		return
	}
	width := short.Strike.Sub(long.Strike).Abs()
	isCredit := false
	if right == Call {
		isCredit = short.Strike.LessThan(long.Strike)
		if isCredit {
			c.Strategy = CallCreditSpread
		} else {
			c.Strategy = CallDebitSpread
		}
	} else {
		isCredit = short.Strike.GreaterThan(long.Strike)
		if isCredit {
			c.Strategy = PutCreditSpread
		} else {
			c.Strategy = PutDebitSpread
		}
	}
	if isCredit {
		c.CapitalRisk = width.Mul(Q(contractMultiplier)).Mul(short.Qty).Sub(credit)
	} else {
		c.CapitalRisk = credit.Neg()
	}
}

// isButterfly reports a one-right wing structure: one short leg of two
// contracts at a middle strike, flanked by two single long wings.
func isButterfly(shorts, longs []LegSig) bool {
	if len(shorts) != 1 || len(longs) != 2 {
		return false
	}
	if !shorts[0].Qty.Equal(Q(2)) || !longs[0].Qty.Equal(Q(1)) || !longs[1].Qty.Equal(Q(1)) {
		return false
	}
	lo := longs[0].Strike.Min(longs[1].Strike)
	hi := longs[0].Strike.Max(longs[1].Strike)
	mid := shorts[0].Strike
	return lo.LessThan(mid) && mid.LessThan(hi)
}

// butterflyRisk approximates the worst case as half the wing span.
func butterflyRisk(longs []LegSig, credit Money) Money {
	span := longs[0].Strike.Sub(longs[1].Strike).Abs()
	risk := span.Div(Q(2)).Mul(Q(contractMultiplier))
	if credit.IsPositive() {
		risk = risk.Sub(credit)
	}
	return risk
}

// nakedShortRisk is the assignment exposure of uncovered short legs: the
// largest strike times the contract multiplier. Cash-settled indexes cannot
// be assigned shares, so only the credit is at stake.
func nakedShortRisk(legs []LegSig, credit Money, underlying string, cfg Config) Money {
	if cfg.IsIndex(underlying) {
		return credit.Abs()
	}
	var risk Money
	for _, l := range legs {
		if !l.Short {
			continue
		}
		if r := l.Strike.Mul(Q(contractMultiplier)).Mul(l.Qty); r.GreaterThan(risk) {
			risk = r
		}
	}
	return risk
}
