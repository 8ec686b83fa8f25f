package attribution

import (
	"errors"
	"math"
)

// ErrNoBracket reports that no sign change could be found for the IRR root.
var ErrNoBracket = errors.New("cannot bracket an IRR root")

// ErrDegenerateFlows reports a flow series that admits no IRR at all, such
// as one where every flow has the same sign.
var ErrDegenerateFlows = errors.New("flow series has no sign change")

// datedFlow is one term of an XNPV series, in investor convention.
type datedFlow struct {
	on     Date
	amount float64
}

// xnpv discounts every flow back to the first one at the given annual rate,
// measuring time in 365-day years.
func xnpv(rate float64, flows []datedFlow) float64 {
	t0 := flows[0].on
	var npv float64
	for _, f := range flows {
		years := YearsBetween(t0, f.on)
		npv += f.amount / math.Pow(1+rate, years)
	}
	return npv
}

// irrSeries assembles the XNPV series for a holding period: the start value
// as money in, the external flows as they happened, the end value as money
// out.
func irrSeries(start Date, startValue float64, flows []Cashflow, end Date, endValue float64) []datedFlow {
	series := make([]datedFlow, 0, len(flows)+2)
	series = append(series, datedFlow{on: start, amount: -startValue})
	for _, f := range flows {
		series = append(series, datedFlow{on: f.Date, amount: f.Amount.AsFloat()})
	}
	series = append(series, datedFlow{on: end, amount: endValue})
	return series
}

// InternalRate computes the annualized money-weighted return of the period
// by bracketing and bisecting the XNPV root.
//
// The bracket starts at [-0.9999, 10] and doubles the upper bound up to
// one million percent before giving up. Bisection runs at most 200
// iterations or until |XNPV| falls under 1e-10.
func InternalRate(start Date, startValue float64, flows []Cashflow, end Date, endValue float64) (float64, error) {
	series := irrSeries(start, startValue, flows, end, endValue)

	hasPositive, hasNegative := false, false
	for _, f := range series {
		if f.amount > 0 {
			hasPositive = true
		}
		if f.amount < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0, ErrDegenerateFlows
	}

	lo, hi := -0.9999, 10.0
	flo, fhi := xnpv(lo, series), xnpv(hi, series)
	for flo*fhi > 0 {
		if hi >= 1e6 {
			return 0, ErrNoBracket
		}
		hi *= 2
		fhi = xnpv(hi, series)
	}

	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fmid := xnpv(mid, series)
		if math.Abs(fmid) < 1e-10 {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, nil
}

// ModifiedDietz approximates the money-weighted return when the XIRR root
// cannot be isolated, weighting each flow by the fraction of the period it
// was invested. The result is annualized over the period's 365-day years.
func ModifiedDietz(start Date, startValue float64, flows []Cashflow, end Date, endValue float64) (float64, error) {
	total := float64(DaysBetween(start, end))
	if total <= 0 {
		return 0, errors.New("empty period")
	}

	// Contributions in portfolio convention: positive is money in.
	var net, weighted float64
	for _, f := range flows {
		contribution := -f.Amount.AsFloat()
		weight := (total - float64(DaysBetween(start, f.Date))) / total
		net += contribution
		weighted += contribution * weight
	}

	denominator := startValue + weighted
	if denominator == 0 {
		return 0, errors.New("zero average capital")
	}
	r := (endValue - startValue - net) / denominator
	years := YearsBetween(start, end)
	if years <= 0 {
		return 0, errors.New("empty period")
	}
	if 1+r <= 0 {
		// A total loss or worse cannot be annualized geometrically.
		return r, nil
	}
	return math.Pow(1+r, 1/years) - 1, nil
}

// SimpleReturn is the unadjusted growth of the period.
//
// A negative start value, such as a margin-debit opening, keeps the plain
// arithmetic result. The sign is intentionally not corrected.
func SimpleReturn(startValue, endValue float64) float64 {
	if startValue == 0 {
		return 0
	}
	return (endValue - startValue) / startValue
}

// Annualize converts a total period return into a compound annual rate.
// Non-positive periods and total losses return 0.
func Annualize(total float64, years float64) float64 {
	if years <= 0 || 1+total <= 0 {
		return 0
	}
	return math.Pow(1+total, 1/years) - 1
}
