package attribution

import (
	"errors"
	"testing"
	"time"
)

func TestReconstructStart(t *testing.T) {
	securities := testSecurities()
	current := Book{
		Positions: map[string]Position{
			"AAPL": NewPosition("AAPL", Q(15), USD(200)),
		},
		Cash: USD(500),
	}
	ledger := NewLedger(
		buy("2026-05-10", "AAPL", 5, 180),
		deposit("2026-06-15", 1000),
		sell("2026-07-02", "AAPL", 2, 190),
	)

	start, err := ReconstructStart(current, ledger, securities, NewDate(2026, time.April, 30))
	if err != nil {
		t.Fatalf("ReconstructStart: %v", err)
	}

	p, ok := start.Positions["AAPL"]
	if !ok {
		t.Fatal("missing AAPL in the start book")
	}
	if !p.Quantity.Equal(Q(12)) {
		t.Errorf("quantity = %s, want 12", p.Quantity)
	}
	// The earliest transaction price anchors the valuation.
	if !p.Price.Equal(USD(180)) {
		t.Errorf("price = %s, want $180", p.Price)
	}
	if !start.Cash.Equal(USD(20)) {
		t.Errorf("cash = %s, want $20", start.Cash)
	}
}

// TestReconstructRoundTrip replays the reconstructed start forward through
// a flat market and must land exactly on the current share counts and cash.
func TestReconstructRoundTrip(t *testing.T) {
	securities := testSecurities()
	current := Book{
		Positions: map[string]Position{
			"AAPL": NewPosition("AAPL", Q(15), USD(200)),
			"VTI":  NewPosition("VTI", Q(40.5), USD(250)),
		},
		Cash: USD(500),
	}
	ledger := NewLedger(
		buy("2026-05-10", "AAPL", 5, 180),
		buy("2026-05-20", "VTI", 10.25, 240),
		deposit("2026-06-15", 1000),
		sell("2026-07-02", "AAPL", 2, 190),
		withdrawal("2026-07-20", 250),
	)
	monthEnds := MonthEnds(3, NewDate(2026, time.July, 31))

	start, err := ReconstructStart(current, ledger, securities, monthEnds[0])
	if err != nil {
		t.Fatalf("ReconstructStart: %v", err)
	}

	snapshots := BuildMonthlySnapshots(start, ledger, monthEnds, ReturnTable{}, securities)
	last := snapshots[len(snapshots)-1]

	if !last.Cash.Equal(current.Cash) {
		t.Errorf("cash = %s, want %s", last.Cash, current.Cash)
	}
	for id, want := range current.Positions {
		got, ok := last.Positions[id]
		if !ok {
			t.Errorf("missing %s in the final snapshot", id)
			continue
		}
		if !got.Quantity.Equal(want.Quantity) {
			t.Errorf("%s quantity = %s, want %s", id, got.Quantity, want.Quantity)
		}
	}
}

func TestReconstructEmptyLedger(t *testing.T) {
	_, err := ReconstructStart(Book{}, NewLedger(), testSecurities(), NewDate(2026, time.April, 30))
	if !errors.Is(err, ErrNoTransactions) {
		t.Errorf("err = %v, want ErrNoTransactions", err)
	}
}

func TestReconstructDropsResidual(t *testing.T) {
	securities := testSecurities()
	current := Book{
		Positions: map[string]Position{
			"AAPL": NewPosition("AAPL", Q(10.0000000001), USD(200)),
		},
		Cash: USD(0),
	}
	// Selling the whole lot leaves a floating-point style residue that
	// must not survive as a position.
	ledger := NewLedger(buy("2026-05-10", "AAPL", 10.0000000001, 180))

	start, err := ReconstructStart(current, ledger, securities, NewDate(2026, time.April, 30))
	if err != nil {
		t.Fatalf("ReconstructStart: %v", err)
	}
	if _, ok := start.Positions["AAPL"]; ok {
		t.Error("residual quantity below 1e-6 must be dropped")
	}
}

func TestReconstructIgnoresEarlierTransactions(t *testing.T) {
	securities := testSecurities()
	current := Book{
		Positions: map[string]Position{"AAPL": NewPosition("AAPL", Q(10), USD(200))},
		Cash:      USD(100),
	}
	ledger := NewLedger(
		// Before the window start: already baked into the start state.
		buy("2026-03-01", "AAPL", 10, 150),
		// On the boundary date itself: not reversed either.
		deposit("2026-04-30", 500),
	)

	start, err := ReconstructStart(current, ledger, securities, NewDate(2026, time.April, 30))
	if err != nil {
		t.Fatalf("ReconstructStart: %v", err)
	}
	if !start.Cash.Equal(USD(100)) {
		t.Errorf("cash = %s, want $100", start.Cash)
	}
	if !start.Positions["AAPL"].Quantity.Equal(Q(10)) {
		t.Errorf("quantity = %s, want 10", start.Positions["AAPL"].Quantity)
	}
}
