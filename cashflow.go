package attribution

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Cashflow is an external flow in investor convention: negative means money
// moved into the portfolio, positive means money came out.
type Cashflow struct {
	Date   Date
	Amount Money
}

// Custodian is the institution-specific part of external-flow detection.
// Institutions disagree on how a plain bank transfer shows up in the
// ledger, so each one contributes its own marker predicate on top of the
// shared rules.
type Custodian struct {
	ID string
	// BankTransfer reports whether the row is an explicit bank transfer
	// in this institution's export dialect.
	BankTransfer func(tx Transaction) bool
}

// custodians is the registry of known export dialects.
var custodians = map[string]Custodian{
	"generic": {
		ID:           "generic",
		BankTransfer: func(tx Transaction) bool { return false },
	},
	"schwab": {
		ID: "schwab",
		BankTransfer: func(tx Transaction) bool {
			return tx.Type == TxCash && strings.Contains(strings.ToLower(tx.Name), "moneylink")
		},
	},
	"fidelity": {
		ID: "fidelity",
		BankTransfer: func(tx Transaction) bool {
			name := strings.ToLower(tx.Name)
			return tx.Type == TxCash &&
				(strings.Contains(name, "electronic funds transfer") || strings.HasPrefix(name, "eft"))
		},
	},
	"vanguard": {
		ID: "vanguard",
		BankTransfer: func(tx Transaction) bool {
			return tx.Type == TxCash && strings.Contains(strings.ToLower(tx.Name), "ach")
		},
	},
}

// CustodianFor returns the custodian strategy registered under id, or the
// generic one.
func CustodianFor(id string) Custodian {
	if c, ok := custodians[strings.ToLower(id)]; ok {
		return c
	}
	return custodians["generic"]
}

// nearZero is the threshold under which a row's cash leg counts as absent,
// making the share leg the flow's size.
var nearZero = M(0.01, "")

// externalFlowSubtypes are the subtype markers that make a cash or trade
// row an explicit external flow.
var externalFlowSubtypes = map[string]bool{
	SubDeposit:      true,
	SubWithdrawal:   true,
	SubContribution: true,
	SubDistribution: true,
}

// classifyExternal applies the per-transaction marker rules and returns the
// investor-signed flow amount when the row is an explicit external flow.
//
// The rules, in order:
//  1. a cash row whose subtype marks a deposit, withdrawal, contribution
//     or distribution;
//  2. a buy or sell whose subtype marks a contribution or distribution
//     (in-kind funding routed through a trade);
//  3. a transfer of a security with no cash leg (an in-kind asset move);
//  4. a custodian-specific bank transfer marker.
//
// The account convention (positive = cash leaves the account) is already
// the investor convention for cash legs: a withdrawal has a positive
// amount and is money out to the investor. Rows with no cash leg size the
// flow from the share leg instead, negated because shares arriving mean
// money moved in.
func classifyExternal(tx Transaction, custodian Custodian) (Money, bool) {
	switch {
	case tx.Type == TxCash && externalFlowSubtypes[tx.Subtype]:
		return tx.Amount, true
	case (tx.Type == TxBuy || tx.Type == TxSell) && externalFlowSubtypes[tx.Subtype]:
		if tx.Amount.Abs().GreaterThanOrEqual(nearZero) {
			return tx.Amount, true
		}
		return tx.Value().Neg(), true
	case tx.Type == TxTransfer && tx.Security != "" && tx.Amount.Abs().LessThan(nearZero):
		return tx.Value().Neg(), true
	case custodian.BankTransfer(tx):
		return tx.Amount, true
	}
	return Money{}, false
}

// identityFlow computes the month's net external flow from the accounting
// identity, in investor convention. Within one month the cash balance can
// only change through trades, income, fees and external money, so the
// unexplained remainder is the external flow:
//
//	net = Δcash + buys - sells - dividends - interest + fees
//
// where every term is in account convention. Sweep-vehicle share legs
// count as cash movement, which is what makes the identity robust against
// deposits silently routed into money-market funds.
func identityFlow(ledger *Ledger, securities *Securities, month Range) Money {
	var deltaCash, buys, sells, dividends, interest, fees Money
	for tx := range ledger.Between(month) {
		if sec, ok := securities.Get(tx.Security); ok && sec.CashEquivalent() {
			deltaCash = deltaCash.Sub(tx.Amount).Add(tx.Value())
			continue
		}
		deltaCash = deltaCash.Sub(tx.Amount)
		switch tx.Type {
		case TxBuy:
			buys = buys.Add(tx.Amount)
		case TxSell:
			sells = sells.Sub(tx.Amount)
		case TxDividend:
			dividends = dividends.Sub(tx.Amount)
		case TxInterest:
			interest = interest.Sub(tx.Amount)
		case TxFee:
			fees = fees.Add(tx.Amount)
		}
	}
	net := deltaCash.Add(buys).Sub(sells).Sub(dividends).Sub(interest).Add(fees)
	// Account convention says positive net needed money coming in; the
	// investor convention flips it.
	return net.Neg()
}

// identityNoiseFloor keeps the identity from manufacturing dust flows out
// of rounding residue.
var identityNoiseFloor = M(1, "")

// ExternalCashflows extracts the external flows of every month ending in
// monthEnds[1:], reconciling explicit markers against the accounting
// identity month by month.
//
// Explicit markers win: they carry real dates, which the IRR day-weights.
// The identity takes over a month only when it disagrees with the markers
// in sign and dwarfs them in size, the signature of an institution that
// reports deposits as something else entirely. Marker-free months fall
// back to the identity outright, dated at the month-end since the identity
// only exists at month granularity.
func ExternalCashflows(ledger *Ledger, securities *Securities, monthEnds []Date, custodian Custodian, log zerolog.Logger) []Cashflow {
	var flows []Cashflow
	for i := 1; i < len(monthEnds); i++ {
		month := Range{From: monthEnds[i-1].Add(1), To: monthEnds[i]}

		var explicit []Cashflow
		var explicitSum Money
		for tx := range ledger.Between(month) {
			if amount, ok := classifyExternal(tx, custodian); ok {
				explicit = append(explicit, Cashflow{Date: tx.Date, Amount: amount})
				explicitSum = explicitSum.Add(amount)
			}
		}
		identity := identityFlow(ledger, securities, month)

		if len(explicit) > 0 {
			opposite := explicitSum.IsPositive() != identity.IsPositive() &&
				!explicitSum.IsZero() && !identity.IsZero()
			if opposite && identity.Abs().GreaterThan(explicitSum.Abs()) {
				log.Warn().
					Str("month", monthEnds[i].String()).
					Str("explicit", explicitSum.String()).
					Str("identity", identity.String()).
					Msg("explicit flow markers contradict the accounting identity, using the identity")
				flows = append(flows, Cashflow{Date: monthEnds[i], Amount: identity})
				continue
			}
			flows = append(flows, explicit...)
			continue
		}
		if identity.Abs().GreaterThan(identityNoiseFloor) {
			log.Debug().
				Str("month", monthEnds[i].String()).
				Str("identity", identity.String()).
				Msg("no explicit flow markers, using the accounting identity")
			flows = append(flows, Cashflow{Date: monthEnds[i], Amount: identity})
		}
	}
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })
	return flows
}

// NetFlow sums the flows dated within r, investor convention.
func NetFlow(flows []Cashflow, r Range) Money {
	var net Money
	for _, f := range flows {
		if r.Contains(f.Date) {
			net = net.Add(f.Amount)
		}
	}
	return net
}
