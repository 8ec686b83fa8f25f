package attribution

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func simTable() ReturnTable {
	t := ReturnTable{}
	t.Set(BenchmarkLargeCap, NewDate(2026, time.June, 30), 0.10)
	t.Set(BenchmarkLargeCap, NewDate(2026, time.July, 31), -0.02)
	t.Set(BenchmarkBond, NewDate(2026, time.June, 30), 0.01)
	t.Set(BenchmarkCash, NewDate(2026, time.June, 30), 0.004)
	t.Set(BenchmarkCash, NewDate(2026, time.July, 31), -0.001)
	return t
}

func TestSimulateBenchmark(t *testing.T) {
	start := Book{
		Positions: map[string]Position{"AAPL": NewPosition("AAPL", Q(10), USD(100))},
		Cash:      USD(500),
	}
	weights := map[string]Percent{BenchmarkLargeCap: 100}
	monthEnds := MonthEnds(2, NewDate(2026, time.July, 31))
	flows := []Cashflow{{Date: NewDate(2026, time.June, 15), Amount: USD(-100)}}

	sim := SimulateBenchmark(start, weights, flows, monthEnds, simTable())

	if len(sim.Months) != 3 {
		t.Fatalf("got %d months, want 3", len(sim.Months))
	}
	// Month 1: securities 1000 -> 1100, cash 500*1.004 + 100 = 602.
	m1 := sim.Months[1]
	if got := m1.SecuritiesValue.AsFloat(); math.Abs(got-1100) > 1e-9 {
		t.Errorf("securities after month 1 = %v, want 1100", got)
	}
	if got := m1.CashValue.AsFloat(); math.Abs(got-602) > 1e-9 {
		t.Errorf("cash after month 1 = %v, want 602", got)
	}
	if !m1.NetFlow.Equal(USD(-100)) {
		t.Errorf("net flow = %s, want -$100", m1.NetFlow)
	}
	// Month 2: securities 1100*0.98 = 1078, cash 602*0.999 = 601.398.
	// The cash bucket compounds even at a negative rate.
	m2 := sim.Months[2]
	if got := m2.SecuritiesValue.AsFloat(); math.Abs(got-1078) > 1e-9 {
		t.Errorf("securities after month 2 = %v, want 1078", got)
	}
	if got := m2.CashValue.AsFloat(); math.Abs(got-601.398) > 1e-9 {
		t.Errorf("cash after month 2 = %v, want 601.398", got)
	}
	if got := sim.EndValue.AsFloat(); math.Abs(got-1679.398) > 1e-6 {
		t.Errorf("end value = %v, want 1679.398", got)
	}
}

func TestSimulateBenchmarkBlended(t *testing.T) {
	start := Book{
		Positions: map[string]Position{"AAPL": NewPosition("AAPL", Q(10), USD(100))},
		Cash:      USD(0),
	}
	weights := map[string]Percent{BenchmarkLargeCap: 60, BenchmarkBond: 40}
	monthEnds := MonthEnds(1, NewDate(2026, time.June, 30))

	sim := SimulateBenchmark(start, weights, nil, monthEnds, simTable())

	// Blended month: 0.6*10% + 0.4*1% = 6.4%.
	want := 1000 * 1.064
	if got := sim.EndValue.AsFloat(); math.Abs(got-want) > 1e-9 {
		t.Errorf("end value = %v, want %v", got, want)
	}
	if got := float64(sim.Months[1].Return); math.Abs(got-6.4) > 1e-9 {
		t.Errorf("blended return = %v%%, want 6.4%%", got)
	}
}

// TestSimulateBenchmarkIdempotent runs the same simulation twice and
// demands identical histories.
func TestSimulateBenchmarkIdempotent(t *testing.T) {
	start := Book{
		Positions: map[string]Position{"AAPL": NewPosition("AAPL", Q(10), USD(100))},
		Cash:      USD(500),
	}
	weights := map[string]Percent{BenchmarkLargeCap: 100}
	monthEnds := MonthEnds(2, NewDate(2026, time.July, 31))
	flows := []Cashflow{{Date: NewDate(2026, time.June, 15), Amount: USD(-100)}}

	a := SimulateBenchmark(start, weights, flows, monthEnds, simTable())
	b := SimulateBenchmark(start, weights, flows, monthEnds, simTable())
	if !reflect.DeepEqual(a, b) {
		t.Error("two identical runs produced different histories")
	}
}
