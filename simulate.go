package attribution

// BenchmarkMonth is one month-end of the shadow portfolio's evolution.
type BenchmarkMonth struct {
	On              Date
	Return          Percent // blended securities-bucket return for the month
	SecuritiesValue Money
	CashValue       Money
	TotalValue      Money
	NetFlow         Money // external flow applied this month, investor convention
}

// BenchmarkSimulation is the replayed history of the shadow portfolio.
type BenchmarkSimulation struct {
	Months   []BenchmarkMonth
	EndValue Money
}

// SimulateBenchmark replays the period in a two-bucket shadow portfolio:
// the start's security value grows at the dollar-weighted blend of the
// benchmark proxies, the start's cash grows at the cash proxy's return,
// and every external flow hits the cash bucket in the month it happened.
//
// The cash bucket keeps compounding even when its return is negative, and
// the simulation is a pure function of its inputs: running it twice yields
// identical histories.
func SimulateBenchmark(start Book, weights map[string]Percent, flows []Cashflow, monthEnds []Date, table ReturnTable) BenchmarkSimulation {
	if len(monthEnds) == 0 {
		return BenchmarkSimulation{}
	}

	currency := start.Cash.Currency()
	securities := start.SecuritiesValue().AsFloat()
	cash := start.Cash.AsFloat()

	sim := BenchmarkSimulation{Months: make([]BenchmarkMonth, 0, len(monthEnds))}
	record := func(on Date, blended float64, flow Money) {
		sim.Months = append(sim.Months, BenchmarkMonth{
			On:              on,
			Return:          Percent(100 * blended),
			SecuritiesValue: M(securities, currency),
			CashValue:       M(cash, currency),
			TotalValue:      M(securities+cash, currency),
			NetFlow:         flow,
		})
	}
	record(monthEnds[0], 0, Money{})

	for i := 1; i < len(monthEnds); i++ {
		me := monthEnds[i]
		var blended float64
		for b, w := range weights {
			blended += float64(w) / 100 * table.Return(b, me)
		}
		securities *= 1 + blended
		cash *= 1 + table.Return(BenchmarkCash, me)

		month := Range{From: monthEnds[i-1].Add(1), To: me}
		flow := NetFlow(flows, month)
		// Investor convention: a negative flow is money in.
		cash -= flow.AsFloat()

		record(me, blended, flow)
	}
	sim.EndValue = M(securities+cash, currency)
	return sim
}
