package attribution

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Performance is the return triple of one portfolio over the window.
type Performance struct {
	TotalReturn      Percent
	AnnualizedReturn Percent
	IRR              *Percent // nil when no money-weighted rate exists
	IRRMethod        string   // "xirr", "dietz" or "" when IRR is nil
}

// BenchmarkResult is the shadow portfolio's side of the comparison.
type BenchmarkResult struct {
	Weights    map[string]Percent
	EndValue   Money
	Simulation BenchmarkSimulation
	Performance
}

// Result is the complete outcome of one analysis run.
type Result struct {
	From       Date
	To         Date
	Months     int
	StartValue Money
	EndValue   Money
	NetFlow    Money // net external flow of the window, investor convention
	Portfolio  Performance
	Benchmark  BenchmarkResult
	// Outperformance is the portfolio's annualized return minus the
	// benchmark's.
	Outperformance Percent
	Fees           FeeBreakdown
	Cashflows      []Cashflow
	Snapshots      []PortfolioSnapshot
}

// Service runs analyses. It owns the market-data collaborator and the
// policy knobs; the portfolio data arrives per call.
type Service struct {
	market     MarketData
	custodian  Custodian
	benchmarks map[string]string  // per-ticker benchmark overrides
	expenses   map[string]float64 // per-ticker expense-ratio overrides
	log        zerolog.Logger
	today      func() Date
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default stderr logger.
func WithLogger(log zerolog.Logger) Option { return func(s *Service) { s.log = log } }

// WithCustodian selects the institution's export dialect.
func WithCustodian(c Custodian) Option { return func(s *Service) { s.custodian = c } }

// WithBenchmarkOverrides sets per-ticker benchmark assignments.
func WithBenchmarkOverrides(m map[string]string) Option {
	return func(s *Service) { s.benchmarks = m }
}

// WithExpenseRatios sets per-ticker expense ratios, overriding the type
// defaults.
func WithExpenseRatios(m map[string]float64) Option {
	return func(s *Service) { s.expenses = m }
}

// WithToday overrides the clock, pinning the analysis window.
func WithToday(today func() Date) Option { return func(s *Service) { s.today = today } }

// NewService returns a Service over the given market data.
func NewService(market MarketData, opts ...Option) *Service {
	s := &Service{
		market:    market,
		custodian: CustodianFor("generic"),
		log:       zerolog.New(os.Stderr).With().Timestamp().Logger(),
		today:     Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze reconstructs the portfolio's last lookbackMonths complete months
// and compares them against a benchmark shadow portfolio.
//
// Holdings and transactions from every account are pooled before any flow
// extraction, so money moving between the household's own accounts can
// cancel out instead of counting as external. The analytic reconstruction
// only seeds the walk: the first generated snapshot is the canonical start
// state for every downstream figure.
func (s *Service) Analyze(ctx context.Context, holdings []Holding, transactions []Transaction,
	securities *Securities, lookbackMonths int) (*Result, error) {

	if lookbackMonths < 1 {
		return nil, fmt.Errorf("lookback of %d months: need at least one", lookbackMonths)
	}
	ledger := NewLedger(transactions...)
	if ledger.Empty() {
		return nil, ErrNoTransactions
	}

	monthEnds := MonthEnds(lookbackMonths, LastCompleteMonthEnd(s.today()))
	window := Range{From: monthEnds[0].Add(1), To: monthEnds[len(monthEnds)-1]}
	if earliest := ledger.Earliest(); earliest.After(monthEnds[0]) {
		// The reconstruction then assumes nothing happened before the first
		// known row, which may misdate the start state.
		s.log.Warn().
			Str("earliest", earliest.String()).
			Str("windowStart", monthEnds[0].String()).
			Msg("transaction history starts inside the window")
	}

	current, err := CurrentBook(holdings, securities)
	if err != nil {
		return nil, fmt.Errorf("pooling holdings: %w", err)
	}
	start, err := ReconstructStart(current, ledger, securities, monthEnds[0])
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("from", window.From.String()).
		Str("to", window.To.String()).
		Int("positions", len(start.Positions)).
		Str("cash", start.Cash.String()).
		Msg("reconstructed start of window")

	weights := BenchmarkWeights(start.Positions, securities, s.benchmarks)
	table, err := s.fetchReturns(ctx, start, current, ledger, securities, weights, monthEnds)
	if err != nil {
		return nil, err
	}

	snapshots := BuildMonthlySnapshots(start, ledger, monthEnds, table, securities)
	flows := ExternalCashflows(ledger, securities, monthEnds, s.custodian, s.log)

	// The first snapshot supersedes the raw reconstruction as the start.
	first, last := snapshots[0], snapshots[len(snapshots)-1]
	years := YearsBetween(first.On, last.On)

	result := &Result{
		From:       first.On,
		To:         last.On,
		Months:     lookbackMonths,
		StartValue: first.TotalValue,
		EndValue:   last.TotalValue,
		NetFlow:    NetFlow(flows, window),
		Cashflows:  flows,
		Snapshots:  snapshots,
	}
	result.Portfolio = s.measure(first.On, first.TotalValue.AsFloat(), flows, last.On, last.TotalValue.AsFloat(), years)

	sim := SimulateBenchmark(first.Book(), weights, flows, monthEnds, table)
	result.Benchmark = BenchmarkResult{
		Weights:    weights,
		EndValue:   sim.EndValue,
		Simulation: sim,
		Performance: s.measure(first.On, first.TotalValue.AsFloat(), flows,
			last.On, sim.EndValue.AsFloat(), years),
	}
	result.Outperformance = result.Portfolio.AnnualizedReturn - result.Benchmark.AnnualizedReturn

	result.Fees = ComputeFees(ledger, window, first.Book(), securities, s.expenses,
		first.TotalValue, last.TotalValue, years)

	s.log.Info().
		Str("portfolio", result.Portfolio.AnnualizedReturn.String()).
		Str("benchmark", result.Benchmark.AnnualizedReturn.String()).
		Str("outperformance", result.Outperformance.String()).
		Msg("analysis complete")
	return result, nil
}

// measure computes the period's return triple, falling back from XIRR to
// Modified Dietz and finally to an absent rate.
func (s *Service) measure(start Date, startValue float64, flows []Cashflow,
	end Date, endValue float64, years float64) Performance {

	total := SimpleReturn(startValue, endValue)
	p := Performance{
		TotalReturn:      Percent(100 * total),
		AnnualizedReturn: Percent(100 * Annualize(total, years)),
	}
	if rate, err := InternalRate(start, startValue, flows, end, endValue); err == nil {
		p.IRR = Percent(100 * rate).Ptr()
		p.IRRMethod = "xirr"
		return p
	} else {
		s.log.Debug().Err(err).Msg("xirr failed, trying modified dietz")
	}
	if rate, err := ModifiedDietz(start, startValue, flows, end, endValue); err == nil {
		p.IRR = Percent(100 * rate).Ptr()
		p.IRRMethod = "dietz"
		return p
	} else {
		s.log.Warn().Err(err).Msg("no money-weighted return for this period")
	}
	return p
}

// fetchReturns calls the market-data collaborator once, for the union of
// held tickers and benchmark proxies.
func (s *Service) fetchReturns(ctx context.Context, start, current Book, ledger *Ledger,
	securities *Securities, weights map[string]Percent, monthEnds []Date) (ReturnTable, error) {

	seen := make(map[string]bool)
	var tickers []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	for _, t := range BenchmarkTickers(weights) {
		add(t)
	}
	security := func(id string) {
		if sec, ok := securities.Get(id); ok && !sec.CashEquivalent() {
			add(sec.Ticker())
		}
	}
	for id := range start.Positions {
		security(id)
	}
	for id := range current.Positions {
		security(id)
	}
	for tx := range ledger.All() {
		security(tx.Security)
	}

	from, to := monthEnds[0], monthEnds[len(monthEnds)-1]
	table, err := s.market.MonthlyReturns(ctx, tickers, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching monthly returns: %w", err)
	}
	return table, nil
}
