package attribution

// Holding is one position row of a current brokerage statement.
type Holding struct {
	Account  string   // owning account
	Security string   // security identifier
	Quantity Quantity // shares held today
	Price    Money    // per-share price as reported
	Value    Money    // market value as reported
}

// Book is the state of the pooled portfolio at one instant: the non-cash
// positions plus a single cash balance.
type Book struct {
	Positions map[string]Position
	Cash      Money
}

// CurrentBook pools today's holdings from every account into a single
// book. Cash-equivalent holdings do not become positions; their reported
// value folds into the cash balance at par.
func CurrentBook(holdings []Holding, securities *Securities) (Book, error) {
	book := Book{Positions: make(map[string]Position, len(holdings))}
	for _, h := range holdings {
		sec, err := securities.Resolve(h.Security)
		if err != nil {
			return Book{}, err
		}
		if sec.CashEquivalent() {
			book.Cash = book.Cash.Add(h.Value)
			continue
		}
		if p, ok := book.Positions[h.Security]; ok {
			// Same security held in several accounts: pool the shares,
			// keep the first reported price.
			p.Quantity = p.Quantity.Add(h.Quantity)
			p.Value = p.Price.Mul(p.Quantity)
			book.Positions[h.Security] = p
			continue
		}
		book.Positions[h.Security] = NewPosition(h.Security, h.Quantity, h.Price)
	}
	return book, nil
}

// TotalValue returns cash plus the value of every position.
func (b Book) TotalValue() Money {
	total := b.Cash
	for _, p := range b.Positions {
		total = total.Add(p.Value)
	}
	return total
}

// SecuritiesValue returns the value of every non-cash position.
func (b Book) SecuritiesValue() Money {
	var total Money
	for _, p := range b.Positions {
		total = total.Add(p.Value)
	}
	return total
}
