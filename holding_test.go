package attribution

import "testing"

func TestCurrentBookPoolsAccounts(t *testing.T) {
	holdings := []Holding{
		{Account: "ira", Security: "AAPL", Quantity: Q(10), Price: USD(180), Value: USD(1800)},
		{Account: "taxable", Security: "AAPL", Quantity: Q(5), Price: USD(180), Value: USD(900)},
		{Account: "taxable", Security: "VTI", Quantity: Q(2), Price: USD(250), Value: USD(500)},
	}

	book, err := CurrentBook(holdings, testSecurities())
	if err != nil {
		t.Fatal(err)
	}
	if len(book.Positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(book.Positions))
	}
	aapl := book.Positions["AAPL"]
	if !aapl.Quantity.Equal(Q(15)) {
		t.Errorf("pooled AAPL quantity = %s, want 15", aapl.Quantity)
	}
	if !aapl.Value.Equal(USD(2700)) {
		t.Errorf("pooled AAPL value = %s, want $2,700.00", aapl.Value)
	}
	if !book.TotalValue().Equal(USD(3200)) {
		t.Errorf("total = %s, want $3,200.00", book.TotalValue())
	}
}

func TestCurrentBookCashEquivalents(t *testing.T) {
	holdings := []Holding{
		{Security: "SPAXX", Quantity: Q(500), Price: USD(1), Value: USD(500)},
		{Security: "USD-CASH", Value: USD(20)},
		{Security: "AAPL", Quantity: Q(1), Price: USD(180), Value: USD(180)},
	}

	book, err := CurrentBook(holdings, testSecurities())
	if err != nil {
		t.Fatal(err)
	}
	if !book.Cash.Equal(USD(520)) {
		t.Errorf("cash = %s, want $520.00", book.Cash)
	}
	if _, ok := book.Positions["SPAXX"]; ok {
		t.Error("a cash equivalent must not become a position")
	}
	if !book.SecuritiesValue().Equal(USD(180)) {
		t.Errorf("securities value = %s, want $180.00", book.SecuritiesValue())
	}
}

func TestCurrentBookUnknownSecurity(t *testing.T) {
	holdings := []Holding{{Security: "GME", Quantity: Q(1), Price: USD(20), Value: USD(20)}}
	if _, err := CurrentBook(holdings, testSecurities()); err == nil {
		t.Error("want an error for a holding missing from the securities table")
	}
}
