package attribution

import "strings"

// SecurityType classifies a security for benchmark matching and fee
// estimation.
type SecurityType string

const (
	Equity     SecurityType = "equity"
	ETF        SecurityType = "etf"
	MutualFund SecurityType = "mutual fund"
	Bond       SecurityType = "bond"
	Cash       SecurityType = "cash"
	Other      SecurityType = "other"
)

// ParseSecurityType maps free-form institution type labels onto the
// canonical set. Unknown labels map to Other.
func ParseSecurityType(s string) SecurityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity", "stock", "stocks":
		return Equity
	case "etf", "exchange traded fund":
		return ETF
	case "mutual fund", "mutual_fund", "fund":
		return MutualFund
	case "bond", "fixed income", "fixed_income":
		return Bond
	case "cash", "currency", "money market", "money_market":
		return Cash
	default:
		return Other
	}
}

// Security represents a tradeable asset held in a brokerage account, such as
// a stock, fund, or money-market sweep vehicle.
type Security struct {
	id             string       // The unique identifier used by transactions and holdings.
	ticker         string       // The public market symbol, empty for unlisted assets.
	name           string       // The institution-reported display name.
	typ            SecurityType // The canonical classification.
	cashEquivalent bool         // Money-market and sweep vehicles valued at par.
}

func NewSecurity(id, ticker, name string, typ SecurityType, cashEquivalent bool) Security {
	return Security{
		id:             id,
		ticker:         ticker,
		name:           name,
		typ:            typ,
		cashEquivalent: cashEquivalent,
	}
}

// ID returns the unique identifier of the security.
func (s Security) ID() string {
	return s.id
}

// Ticker returns the public market symbol of the security.
func (s Security) Ticker() string {
	return s.ticker
}

// Name returns the institution-reported display name.
func (s Security) Name() string {
	return s.name
}

// Type returns the canonical classification.
func (s Security) Type() SecurityType {
	return s.typ
}

// CashEquivalent reports whether the security is a money-market or sweep
// vehicle treated as cash by the engine.
func (s Security) CashEquivalent() bool {
	return s.cashEquivalent || s.typ == Cash
}

// IsFund reports whether the security carries an embedded expense ratio.
func (s Security) IsFund() bool {
	return s.typ == ETF || s.typ == MutualFund
}
