package attribution

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Numbers are persisted as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// This file is the ingestion boundary. Institution exports arrive as JSONL,
// one object per line, already converted to the canonical field set by the
// per-institution download tooling. The parsers here are the only place
// where malformed numerics are tolerated: they coerce to zero, so one bad
// row degrades a figure instead of killing the run.

// looseNumber is a decimal that accepts JSON numbers, numeric strings, and
// silently reads anything else as zero.
type looseNumber struct{ decimal.Decimal }

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = d
	return nil
}

// scanLines runs fn over every non-blank line of a JSONL stream.
func scanLines(r io.Reader, fn func(line []byte, num int) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	num := 0
	for scanner.Scan() {
		num++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(line, num); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DecodeSecurities parses the securities definition stream.
func DecodeSecurities(r io.Reader) (*Securities, error) {
	type jsecurity struct {
		ID             string `json:"id"`
		Ticker         string `json:"ticker"`
		Name           string `json:"name"`
		Type           string `json:"type"`
		CashEquivalent bool   `json:"cashEquivalent"`
	}

	securities := NewSecurities()
	err := scanLines(r, func(line []byte, num int) error {
		var js jsecurity
		if err := json.Unmarshal(line, &js); err != nil {
			return fmt.Errorf("format error in securities line %d: %w", num, err)
		}
		if js.ID == "" {
			return fmt.Errorf("format error in securities line %d: missing id", num)
		}
		if _, exists := securities.Get(js.ID); exists {
			return fmt.Errorf("format error in securities line %d: %q is already defined", num, js.ID)
		}
		securities.Add(NewSecurity(js.ID, js.Ticker, js.Name, ParseSecurityType(js.Type), js.CashEquivalent))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return securities, nil
}

// DecodeHoldings parses the current holdings stream.
func DecodeHoldings(r io.Reader, currency string) ([]Holding, error) {
	type jholding struct {
		Account  string      `json:"account"`
		Security string      `json:"security"`
		Quantity looseNumber `json:"quantity"`
		Price    looseNumber `json:"price"`
		Value    looseNumber `json:"value"`
	}

	var holdings []Holding
	err := scanLines(r, func(line []byte, num int) error {
		var jh jholding
		if err := json.Unmarshal(line, &jh); err != nil {
			return fmt.Errorf("format error in holdings line %d: %w", num, err)
		}
		if jh.Security == "" {
			return fmt.Errorf("format error in holdings line %d: missing security", num)
		}
		h := Holding{
			Account:  jh.Account,
			Security: jh.Security,
			Quantity: Q(jh.Quantity.Decimal),
			Price:    M(jh.Price.Decimal, currency),
			Value:    M(jh.Value.Decimal, currency),
		}
		// A missing value is recoverable when quantity and price are there.
		if h.Value.IsZero() {
			h.Value = h.Price.Mul(h.Quantity)
		}
		holdings = append(holdings, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// DecodeTransactions parses the transactions stream into a date-ordered
// ledger.
func DecodeTransactions(r io.Reader, currency string) (*Ledger, error) {
	type jtransaction struct {
		Account  string      `json:"account"`
		Security string      `json:"security"`
		Date     Date        `json:"date"`
		Type     string      `json:"type"`
		Subtype  string      `json:"subtype"`
		Quantity looseNumber `json:"quantity"`
		Amount   looseNumber `json:"amount"`
		Price    looseNumber `json:"price"`
		Fees     looseNumber `json:"fees"`
		Name     string      `json:"name"`
	}

	var txs []Transaction
	err := scanLines(r, func(line []byte, num int) error {
		var jt jtransaction
		if err := json.Unmarshal(line, &jt); err != nil {
			return fmt.Errorf("format error in transactions line %d: %w", num, err)
		}
		if jt.Date.IsZero() {
			return fmt.Errorf("format error in transactions line %d: missing date", num)
		}
		txs = append(txs, Transaction{
			Account:  jt.Account,
			Security: jt.Security,
			Date:     jt.Date,
			Type:     parseTxType(jt.Type),
			Subtype:  strings.ToLower(strings.TrimSpace(jt.Subtype)),
			Quantity: Q(jt.Quantity.Decimal),
			Amount:   M(jt.Amount.Decimal, currency),
			Price:    M(jt.Price.Decimal, currency),
			Fees:     M(jt.Fees.Decimal, currency),
			Name:     jt.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewLedger(txs...), nil
}

// parseTxType normalizes institution type labels onto the canonical set.
func parseTxType(s string) TxType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "deposit", "withdrawal":
		return TxCash
	case "buy", "purchase":
		return TxBuy
	case "sell", "sale":
		return TxSell
	case "transfer":
		return TxTransfer
	case "dividend", "div":
		return TxDividend
	case "interest":
		return TxInterest
	case "fee", "fees", "commission":
		return TxFee
	default:
		return TxOther
	}
}

// --- Result JSON ---

func (c Cashflow) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", c.Date)
	w.Append("amount", c.Amount)
	return w.MarshalJSON()
}

func (p Performance) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("totalReturn", float64(p.TotalReturn))
	w.Append("annualizedReturn", float64(p.AnnualizedReturn))
	if p.IRR != nil {
		w.Append("irr", float64(*p.IRR))
		w.Append("irrMethod", p.IRRMethod)
	} else {
		w.Append("irr", nil)
	}
	return w.MarshalJSON()
}

func (b BenchmarkMonth) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("on", b.On)
	w.Append("return", float64(b.Return))
	w.Append("securitiesValue", b.SecuritiesValue)
	w.Append("cashValue", b.CashValue)
	w.Append("totalValue", b.TotalValue)
	w.Append("netFlow", b.NetFlow)
	return w.MarshalJSON()
}

func (b BenchmarkResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("weights", b.Weights)
	w.Append("endValue", b.EndValue)
	w.EmbedFrom(b.Performance)
	w.Append("months", b.Simulation.Months)
	return w.MarshalJSON()
}

func (f FeeBreakdown) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("explicit", f.Explicit)
	w.Append("implicit", f.Implicit)
	w.Append("total", f.Total)
	w.Append("weightedExpenseRatio", float64(f.WeightedExpense))
	return w.MarshalJSON()
}

func (r *Result) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("from", r.From)
	w.Append("to", r.To)
	w.Append("months", r.Months)
	w.Append("startValue", r.StartValue)
	w.Append("endValue", r.EndValue)
	w.Append("netFlow", r.NetFlow)
	w.Append("portfolio", r.Portfolio)
	w.Append("benchmark", r.Benchmark)
	w.Append("outperformance", float64(r.Outperformance))
	w.Append("fees", r.Fees)
	w.Append("cashflows", r.Cashflows)
	w.Append("snapshots", r.Snapshots)
	return w.MarshalJSON()
}
