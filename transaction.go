package attribution

import (
	"iter"
	"sort"
)

// TxType is the canonical transaction category after type normalization.
type TxType string

const (
	TxCash     TxType = "cash"
	TxBuy      TxType = "buy"
	TxSell     TxType = "sell"
	TxTransfer TxType = "transfer"
	TxDividend TxType = "dividend"
	TxInterest TxType = "interest"
	TxFee      TxType = "fee"
	TxOther    TxType = "other"
)

// Subtypes carrying an explicit external-flow marker.
const (
	SubDeposit      = "deposit"
	SubWithdrawal   = "withdrawal"
	SubContribution = "contribution"
	SubDistribution = "distribution"
	SubFee          = "fee"
)

// Transaction is one normalized brokerage ledger row.
//
// Amount follows the account convention: positive means cash leaves the
// account (a purchase, a withdrawal, a fee), negative means cash arrives
// (a sale, a deposit, a dividend). Quantity is signed the same way the
// position moves: positive adds shares, negative removes them.
type Transaction struct {
	Account  string   // source account, used only for pooling diagnostics
	Security string   // security identifier, empty for pure cash rows
	Date     Date     // settlement or trade date as reported
	Type     TxType   // normalized category
	Subtype  string   // institution subtype, lowercased
	Quantity Quantity // signed share movement
	Amount   Money    // signed cash movement, account convention
	Price    Money    // per-share price when reported
	Fees     Money    // explicit commission or fee attached to the row
	Name     string   // institution-reported description
}

// Value returns the cash-equivalent size of the row's share movement.
func (t Transaction) Value() Money { return t.Price.Mul(t.Quantity) }

// Ledger is an immutable, date-ordered list of transactions pooled across
// every account of the household.
type Ledger struct {
	transactions []Transaction
}

// NewLedger builds a ledger from the given transactions, sorted by date.
// The sort is stable so same-day rows keep their institution order.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{transactions: make([]Transaction, len(txs))}
	copy(l.transactions, txs)
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
	return l
}

func (l *Ledger) Len() int    { return len(l.transactions) }
func (l *Ledger) Empty() bool { return len(l.transactions) == 0 }

// All returns an iterator over every transaction in date order.
func (l *Ledger) All() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Between returns an iterator over the transactions dated within r,
// boundaries included.
func (l *Ledger) Between(r Range) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(r.To) {
				return
			}
			if r.Contains(tx.Date) && !yield(tx) {
				return
			}
		}
	}
}

// After returns an iterator over the transactions dated strictly after d.
func (l *Ledger) After(d Date) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(d) && !yield(tx) {
				return
			}
		}
	}
}

// Earliest returns the date of the first transaction. Zero when empty.
func (l *Ledger) Earliest() Date {
	if l.Empty() {
		return Date{}
	}
	return l.transactions[0].Date
}
