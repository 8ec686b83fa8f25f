package attribution

import (
	"errors"
	"fmt"
)

// ErrNoTransactions marks an analysis request whose ledger is empty.
// Nothing can be reconstructed without history.
var ErrNoTransactions = errors.New("no transactions to reconstruct from")

// ReconstructStart derives the portfolio state at startMonthEnd by undoing,
// in reverse, every transaction dated strictly after it. Exact decimal
// arithmetic keeps the walk reversible: replaying the same transactions
// forward lands back on the current book.
//
// Each reconstructed position is valued at its anchor price, the earliest
// transaction price seen for that security, falling back to the current
// holding price for positions the window never traded. Residual share
// counts below 1e-6 are dropped.
func ReconstructStart(current Book, ledger *Ledger, securities *Securities, startMonthEnd Date) (Book, error) {
	if ledger.Empty() {
		return Book{}, fmt.Errorf("cannot reconstruct %s: %w", startMonthEnd, ErrNoTransactions)
	}

	quantities := make(map[string]Quantity, len(current.Positions))
	for id, p := range current.Positions {
		quantities[id] = p.Quantity
	}

	cash := current.Cash
	earliestPrice := make(map[string]Money)
	for tx := range ledger.After(startMonthEnd) {
		// The ledger is date-ordered, so the first price seen per
		// security is the earliest one.
		if tx.Security != "" && !tx.Price.IsZero() {
			if _, ok := earliestPrice[tx.Security]; !ok {
				earliestPrice[tx.Security] = tx.Price
			}
		}

		if sec, ok := securities.Get(tx.Security); ok && sec.CashEquivalent() {
			// Undo the sweep row's net cash effect.
			cash = cash.Add(tx.Amount).Sub(tx.Value())
			continue
		}
		cash = cash.Add(tx.Amount)
		if tx.Security == "" {
			continue
		}
		quantities[tx.Security] = qty(quantities, tx.Security).Sub(tx.Quantity)
	}

	start := Book{Positions: make(map[string]Position, len(quantities)), Cash: cash}
	for id, q := range quantities {
		if q.Abs().LessThan(negligibleQuantity) {
			continue
		}
		price, ok := earliestPrice[id]
		if !ok {
			if p, held := current.Positions[id]; held {
				price = p.Price
			}
		}
		start.Positions[id] = NewPosition(id, q, price)
	}
	return start, nil
}
