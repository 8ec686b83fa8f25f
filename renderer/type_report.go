package renderer

import (
	"fmt"
	"sort"

	"github.com/etnz/attribution"
)

// Report is the flattened view of one analysis result, shaped for the
// report templates. Money and Percent values keep their engine types so
// the templates can call their String methods.
type Report struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Months int    `json:"months"`

	StartValue attribution.Money `json:"startValue"`
	EndValue   attribution.Money `json:"endValue"`
	NetFlow    attribution.Money `json:"netFlow"`

	Portfolio         PerformanceView     `json:"portfolio"`
	Benchmark         PerformanceView     `json:"benchmark"`
	BenchmarkEndValue attribution.Money   `json:"benchmarkEndValue"`
	Outperformance    attribution.Percent `json:"outperformance"`

	Weights []WeightRow `json:"weights"`

	Fees FeesView `json:"fees"`

	Cashflows []CashflowRow `json:"cashflows"`
	Snapshots []SnapshotRow `json:"snapshots"`
}

// PerformanceView is the return triple of one side of the comparison.
type PerformanceView struct {
	TotalReturn      attribution.Percent `json:"totalReturn"`
	AnnualizedReturn attribution.Percent `json:"annualizedReturn"`
	IRR              string              `json:"irr"` // formatted, "n/a" when absent
}

// WeightRow is one benchmark proxy and its share of the start portfolio.
type WeightRow struct {
	Ticker string              `json:"ticker"`
	Weight attribution.Percent `json:"weight"`
}

// FeesView is the fee drag section of the report.
type FeesView struct {
	Explicit        attribution.Money   `json:"explicit"`
	Implicit        attribution.Money   `json:"implicit"`
	Total           attribution.Money   `json:"total"`
	WeightedExpense attribution.Percent `json:"weightedExpense"`
}

// CashflowRow is one detected external flow, investor convention.
type CashflowRow struct {
	Date   string            `json:"date"`
	Amount attribution.Money `json:"amount"`
}

// SnapshotRow is the state of the portfolio at one month-end.
type SnapshotRow struct {
	Date      string            `json:"date"`
	Positions int               `json:"positions"`
	Cash      attribution.Money `json:"cash"`
	Value     attribution.Money `json:"value"`
}

// NewReport flattens an analysis result into its renderable view.
func NewReport(r *attribution.Result) *Report {
	rep := &Report{
		From:              r.From.String(),
		To:                r.To.String(),
		Months:            r.Months,
		StartValue:        r.StartValue,
		EndValue:          r.EndValue,
		NetFlow:           r.NetFlow,
		Portfolio:         performanceView(r.Portfolio),
		Benchmark:         performanceView(r.Benchmark.Performance),
		BenchmarkEndValue: r.Benchmark.EndValue,
		Outperformance:    r.Outperformance,
		Fees: FeesView{
			Explicit:        r.Fees.Explicit,
			Implicit:        r.Fees.Implicit,
			Total:           r.Fees.Total,
			WeightedExpense: r.Fees.WeightedExpense,
		},
	}

	for ticker, weight := range r.Benchmark.Weights {
		rep.Weights = append(rep.Weights, WeightRow{Ticker: ticker, Weight: weight})
	}
	// Heaviest proxy first, ties by ticker.
	sort.Slice(rep.Weights, func(i, j int) bool {
		if rep.Weights[i].Weight != rep.Weights[j].Weight {
			return rep.Weights[i].Weight > rep.Weights[j].Weight
		}
		return rep.Weights[i].Ticker < rep.Weights[j].Ticker
	})

	for _, f := range r.Cashflows {
		rep.Cashflows = append(rep.Cashflows, CashflowRow{Date: f.Date.String(), Amount: f.Amount})
	}
	for _, s := range r.Snapshots {
		rep.Snapshots = append(rep.Snapshots, SnapshotRow{
			Date:      s.On.String(),
			Positions: len(s.Positions),
			Cash:      s.Cash,
			Value:     s.TotalValue,
		})
	}
	return rep
}

func performanceView(p attribution.Performance) PerformanceView {
	v := PerformanceView{
		TotalReturn:      p.TotalReturn,
		AnnualizedReturn: p.AnnualizedReturn,
		IRR:              "n/a",
	}
	if p.IRR != nil {
		v.IRR = fmt.Sprintf("%s (%s)", p.IRR.SignedString(), p.IRRMethod)
	}
	return v
}
