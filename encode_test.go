package attribution

import (
	"strings"
	"testing"
)

func TestDecodeSecurities(t *testing.T) {
	input := `
{"id":"AAPL","ticker":"AAPL","name":"Apple Inc","type":"equity"}
{"id":"SPAXX","ticker":"SPAXX","name":"Fidelity Government Money Market Fund","type":"mutual fund","cashEquivalent":true}
`
	securities, err := DecodeSecurities(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeSecurities: %v", err)
	}
	if securities.Len() != 2 {
		t.Fatalf("got %d securities, want 2", securities.Len())
	}
	spaxx, _ := securities.Get("SPAXX")
	if !spaxx.CashEquivalent() {
		t.Error("SPAXX must be a cash equivalent")
	}
	aapl, _ := securities.Get("AAPL")
	if aapl.Type() != Equity {
		t.Errorf("AAPL type = %s, want equity", aapl.Type())
	}
}

func TestDecodeSecuritiesDuplicate(t *testing.T) {
	input := `
{"id":"AAPL","ticker":"AAPL"}
{"id":"AAPL","ticker":"AAPL"}
`
	if _, err := DecodeSecurities(strings.NewReader(input)); err == nil {
		t.Error("want an error on a duplicate id")
	}
}

func TestDecodeHoldings(t *testing.T) {
	input := `
{"account":"ira","security":"VTI","quantity":10,"price":250.50}
{"account":"ira","security":"AAPL","quantity":"5","price":"200","value":"1000"}
`
	holdings, err := DecodeHoldings(strings.NewReader(input), "USD")
	if err != nil {
		t.Fatalf("DecodeHoldings: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	// A missing value is derived from quantity and price.
	if !holdings[0].Value.Equal(USD(2505)) {
		t.Errorf("derived value = %s, want $2505", holdings[0].Value)
	}
	// Numeric strings parse like numbers.
	if !holdings[1].Quantity.Equal(Q(5)) {
		t.Errorf("quantity = %s, want 5", holdings[1].Quantity)
	}
}

func TestDecodeTransactions(t *testing.T) {
	input := `
{"date":"2026-06-15","type":"cash","subtype":"Deposit","amount":-1000}
{"security":"AAPL","date":"2026-05-10","type":"purchase","quantity":5,"amount":900,"price":180,"fees":"abc"}

{"security":"AAPL","date":"2026-07-02","type":"sale","quantity":-2,"amount":-380,"price":190}
`
	ledger, err := DecodeTransactions(strings.NewReader(input), "USD")
	if err != nil {
		t.Fatalf("DecodeTransactions: %v", err)
	}
	if ledger.Len() != 3 {
		t.Fatalf("got %d transactions, want 3", ledger.Len())
	}

	var txs []Transaction
	for tx := range ledger.All() {
		txs = append(txs, tx)
	}
	// Sorted by date.
	if txs[0].Date != MustParse("2026-05-10") {
		t.Errorf("first transaction on %s, want 2026-05-10", txs[0].Date)
	}
	// Type labels normalize, subtypes lowercase.
	if txs[0].Type != TxBuy {
		t.Errorf("type = %s, want buy", txs[0].Type)
	}
	if txs[1].Subtype != SubDeposit {
		t.Errorf("subtype = %q, want %q", txs[1].Subtype, SubDeposit)
	}
	// A malformed numeric coerces to zero instead of failing the run.
	if !txs[0].Fees.IsZero() {
		t.Errorf("fees = %s, want 0 for a malformed numeric", txs[0].Fees)
	}
}

func TestDecodeTransactionsMissingDate(t *testing.T) {
	input := `{"type":"cash","amount":-1000}`
	if _, err := DecodeTransactions(strings.NewReader(input), "USD"); err == nil {
		t.Error("want an error on a missing date")
	}
}

func TestResultJSONOrder(t *testing.T) {
	r := &Result{
		From:       NewDate(2026, 4, 30),
		To:         NewDate(2026, 7, 31),
		Months:     3,
		StartValue: USD(2180),
		EndValue:   USD(3200),
	}
	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	got := string(b)
	if !strings.HasPrefix(got, `{"from":"2026-04-30","to":"2026-07-31","months":3`) {
		t.Errorf("unexpected field order: %s", got)
	}
	if !strings.Contains(got, `"irr":null`) {
		t.Errorf("absent irr must serialize as null: %s", got)
	}
}
