package attribution

import (
	"slices"
)

// Position is a single security line of a snapshot: a share count and the
// price it is valued at.
type Position struct {
	Security string
	Quantity Quantity
	Price    Money
	Value    Money
}

// NewPosition builds a position, deriving Value from quantity and price so
// the value invariant holds by construction.
func NewPosition(security string, quantity Quantity, price Money) Position {
	return Position{
		Security: security,
		Quantity: quantity,
		Price:    price,
		Value:    price.Mul(quantity),
	}
}

// PortfolioSnapshot is the valued state of the pooled portfolio at one
// month-end.
type PortfolioSnapshot struct {
	On         Date
	Positions  map[string]Position
	Cash       Money
	TotalValue Money
}

// Book returns the snapshot's state as a Book.
func (s PortfolioSnapshot) Book() Book {
	return Book{Positions: s.Positions, Cash: s.Cash}
}

func (s PortfolioSnapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("on", s.On)
	ids := make([]string, 0, len(s.Positions))
	for id := range s.Positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	positions := make([]Position, 0, len(ids))
	for _, id := range ids {
		positions = append(positions, s.Positions[id])
	}
	w.Append("positions", positions)
	w.Append("cash", s.Cash)
	w.Append("totalValue", s.TotalValue)
	return w.MarshalJSON()
}

func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security", p.Security)
	w.Append("quantity", p.Quantity)
	w.Append("price", p.Price)
	w.Append("value", p.Value)
	return w.MarshalJSON()
}

// BuildMonthlySnapshots walks forward from the reconstructed start book and
// values the portfolio at every month-end in monthEnds.
//
// The first snapshot is the start book itself: every held security valued
// at its anchor price with a return index of 1.0. Each later month applies
// the transactions dated in (previous month-end, month-end], compounds each
// ticker's return index by that month's return (absent months count as 0%),
// and revalues every position at anchor price times index.
//
// The returned snapshots share nothing with the inputs: maps are fresh per
// call and per month.
func BuildMonthlySnapshots(start Book, ledger *Ledger, monthEnds []Date, table ReturnTable, securities *Securities) []PortfolioSnapshot {
	if len(monthEnds) == 0 {
		return nil
	}

	// Working state: share counts, anchor prices, and per-ticker indices.
	quantities := make(map[string]Quantity, len(start.Positions))
	anchors := make(map[string]Money, len(start.Positions))
	for id, p := range start.Positions {
		quantities[id] = p.Quantity
		anchors[id] = p.Price
	}
	indices := make(map[string]float64)
	cash := start.Cash

	snapshots := make([]PortfolioSnapshot, 0, len(monthEnds))
	for i, me := range monthEnds {
		if i > 0 {
			// Apply the month's transactions.
			for tx := range ledger.Between(Range{From: monthEnds[i-1].Add(1), To: me}) {
				if sec, ok := securities.Get(tx.Security); ok && sec.CashEquivalent() {
					// Sweep vehicles live in the cash balance, so their
					// share movements never create positions. The net cash
					// effect is the row's cash leg plus the par value of
					// the shares moved.
					cash = cash.Sub(tx.Amount).Add(tx.Value())
					continue
				}
				cash = cash.Sub(tx.Amount)
				if tx.Security == "" {
					continue
				}
				quantities[tx.Security] = qty(quantities, tx.Security).Add(tx.Quantity)
				if _, ok := anchors[tx.Security]; !ok && !tx.Price.IsZero() {
					anchors[tx.Security] = tx.Price
				}
			}
			// Compound this month's return into every known index.
			for id := range quantities {
				ticker := tickerOf(securities, id)
				idx := index(indices, id)
				indices[id] = idx * (1 + table.Return(ticker, me))
			}
		}

		snap := PortfolioSnapshot{On: me, Positions: make(map[string]Position, len(quantities))}
		for id, q := range quantities {
			if q.Abs().LessThan(negligibleQuantity) {
				continue
			}
			anchor := anchors[id]
			price := M(anchor.AsFloat()*index(indices, id), anchor.Currency())
			snap.Positions[id] = NewPosition(id, q, price)
		}
		snap.Cash = cash
		snap.TotalValue = snap.Book().TotalValue()
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// negligibleQuantity is the threshold under which a residual share count is
// treated as zero.
var negligibleQuantity = Q(1e-6)

func qty(m map[string]Quantity, id string) Quantity {
	if q, ok := m[id]; ok {
		return q
	}
	return Q(0)
}

// index returns the compounded return index for id, 1.0 when unseen.
func index(m map[string]float64, id string) float64 {
	if v, ok := m[id]; ok {
		return v
	}
	return 1.0
}

func tickerOf(securities *Securities, id string) string {
	if sec, ok := securities.Get(id); ok && sec.Ticker() != "" {
		return sec.Ticker()
	}
	return id
}
