package attribution

import "github.com/rs/zerolog"

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// nopLog is a silent logger for tests.
var nopLog = zerolog.Nop()

// testSecurities is a small reference table shared by the tests.
func testSecurities() *Securities {
	return NewSecurities(
		NewSecurity("AAPL", "AAPL", "Apple Inc", Equity, false),
		NewSecurity("VTI", "VTI", "Vanguard Total Stock Market ETF", ETF, false),
		NewSecurity("VXUS", "VXUS", "Vanguard Total International Stock ETF", ETF, false),
		NewSecurity("AGG", "AGG", "iShares Core US Aggregate Bond ETF", ETF, false),
		NewSecurity("VTSAX", "VTSAX", "Vanguard Total Stock Market Index Fund", MutualFund, false),
		NewSecurity("SPAXX", "SPAXX", "Fidelity Government Money Market Fund", MutualFund, true),
		NewSecurity("USD-CASH", "", "US Dollar", Cash, true),
	)
}

// buy returns a purchase row funded from cash.
func buy(on string, security string, qty, price float64) Transaction {
	return Transaction{
		Security: security,
		Date:     MustParse(on),
		Type:     TxBuy,
		Quantity: Q(qty),
		Amount:   USD(qty * price),
		Price:    USD(price),
	}
}

// sell returns a sale row, proceeds to cash.
func sell(on string, security string, qty, price float64) Transaction {
	return Transaction{
		Security: security,
		Date:     MustParse(on),
		Type:     TxSell,
		Quantity: Q(-qty),
		Amount:   USD(-qty * price),
		Price:    USD(price),
	}
}

// deposit returns an explicit cash deposit row.
func deposit(on string, amount float64) Transaction {
	return Transaction{
		Date:    MustParse(on),
		Type:    TxCash,
		Subtype: SubDeposit,
		Amount:  USD(-amount),
	}
}

// withdrawal returns an explicit cash withdrawal row.
func withdrawal(on string, amount float64) Transaction {
	return Transaction{
		Date:    MustParse(on),
		Type:    TxCash,
		Subtype: SubWithdrawal,
		Amount:  USD(amount),
	}
}
