package attribution

// defaultExpenseRatios are the annual expense-ratio estimates used when no
// per-ticker override is known. Broad index ETFs cluster near ten basis
// points; actively managed mutual funds average far higher.
var defaultExpenseRatios = map[SecurityType]float64{
	ETF:        0.0010,
	MutualFund: 0.0060,
}

// FeeBreakdown separates what the investor visibly paid from what the fund
// managers silently kept.
type FeeBreakdown struct {
	Explicit        Money   // commissions and fee rows found in the ledger
	Implicit        Money   // estimated expense-ratio drag over the period
	Total           Money
	WeightedExpense Percent // value-weighted average expense ratio of fund holdings
}

// ExpenseRatio returns the annual expense ratio assumed for a security:
// the per-ticker override when known, else the type default, else zero.
func ExpenseRatio(sec Security, overrides map[string]float64) float64 {
	if er, ok := overrides[sec.Ticker()]; ok {
		return er
	}
	if !sec.IsFund() {
		return 0
	}
	return defaultExpenseRatios[sec.Type()]
}

// ComputeFees totals the period's explicit fees from the ledger and
// estimates the implicit expense-ratio drag from the fund positions.
//
// Explicit fees are every per-trade fee plus every fee-typed or
// fee-subtyped row dated in the window. The implicit drag applies the
// value-weighted average expense ratio of the start-of-period fund
// positions to the average of start and end portfolio value over the
// period's years.
func ComputeFees(ledger *Ledger, window Range, start Book, securities *Securities,
	overrides map[string]float64, startValue, endValue Money, years float64) FeeBreakdown {

	currency := startValue.Currency()
	var explicit Money
	for tx := range ledger.Between(window) {
		explicit = explicit.Add(tx.Fees.Abs())
		if tx.Type == TxFee || tx.Subtype == SubFee {
			explicit = explicit.Add(tx.Amount.Abs())
		}
	}

	var fundValue, weighted float64
	for id, p := range start.Positions {
		sec, ok := securities.Get(id)
		if !ok || !sec.IsFund() {
			continue
		}
		v := p.Value.AsFloat()
		if v < 0 {
			v = -v
		}
		fundValue += v
		weighted += v * ExpenseRatio(sec, overrides)
	}

	var avgRatio float64
	if fundValue > 0 {
		avgRatio = weighted / fundValue
	}
	avgValue := (startValue.AsFloat() + endValue.AsFloat()) / 2
	implicit := M(avgRatio*avgValue*years, currency)

	return FeeBreakdown{
		Explicit:        explicit,
		Implicit:        implicit,
		Total:           explicit.Add(implicit),
		WeightedExpense: Percent(100 * avgRatio),
	}
}
