package attribution

import "context"

// ReturnTable holds monthly total returns per ticker, keyed by month-end
// date. A return of 0.02 means +2% for that month.
type ReturnTable map[string]map[Date]float64

// Return returns the monthly return for ticker at the given month-end.
// Absent ticker/month pairs are flat months.
func (t ReturnTable) Return(ticker string, monthEnd Date) float64 {
	return t[ticker][monthEnd]
}

// Set records a monthly return, allocating the ticker row when needed.
func (t ReturnTable) Set(ticker string, monthEnd Date, r float64) {
	row, ok := t[ticker]
	if !ok {
		row = make(map[Date]float64)
		t[ticker] = row
	}
	row[monthEnd] = r
}

// MarketData supplies monthly total returns for the engine. The engine
// calls it exactly once per analysis, with the union of held and benchmark
// tickers.
type MarketData interface {
	// MonthlyReturns returns, per ticker, the monthly returns keyed by
	// month-end date for every month-end in [from, to]. A missing
	// ticker/month pair is treated as 0% downstream. A ticker that cannot
	// be fetched at all must fail the call.
	MonthlyReturns(ctx context.Context, tickers []string, from, to Date) (ReturnTable, error)
}
