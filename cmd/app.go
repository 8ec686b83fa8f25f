// Package cmd implements the CLI application to analyze a portfolio's
// performance.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/attribution"
	"github.com/etnz/attribution/eodhd"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyzeCmd{}, "analysis")
	c.Register(&projectCmd{}, "analysis")
	c.Register(&assistCmd{}, "analysis")
	c.Register(&topicCmd{}, "documentation")
}

// inputFlags are the portfolio input files shared by the subcommands
// that run an analysis.
type inputFlags struct {
	securitiesFile   string
	holdingsFile     string
	transactionsFile string
	currency         string
	months           int
	custodian        string
	benchmarks       string
	expenses         string
	verbose          bool
}

func (c *inputFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.securitiesFile, "securities", "securities.jsonl", "securities reference file (JSONL)")
	f.StringVar(&c.holdingsFile, "holdings", "holdings.jsonl", "current holdings file (JSONL)")
	f.StringVar(&c.transactionsFile, "transactions", "transactions.jsonl", "transaction history file (JSONL)")
	f.StringVar(&c.currency, "currency", "USD", "reporting currency for amounts missing one")
	f.IntVar(&c.months, "months", 12, "number of complete months to reconstruct")
	f.StringVar(&c.custodian, "custodian", "generic", "custodian dialect (generic, schwab, fidelity, vanguard)")
	f.StringVar(&c.benchmarks, "benchmark", "", "benchmark overrides, e.g. 'ARKK=SPY,GLD=BND'")
	f.StringVar(&c.expenses, "expense", "", "expense ratio overrides, e.g. 'VTSAX=0.0004'")
	f.BoolVar(&c.verbose, "v", false, "log the analysis details")
}

// analyze loads the three input files and runs the full analysis.
func (c *inputFlags) analyze(ctx context.Context) (*attribution.Result, error) {
	securities, err := decodeFile(c.securitiesFile, attribution.DecodeSecurities)
	if err != nil {
		return nil, err
	}
	holdings, err := decodeFile(c.holdingsFile, func(r io.Reader) ([]attribution.Holding, error) {
		return attribution.DecodeHoldings(r, c.currency)
	})
	if err != nil {
		return nil, err
	}
	ledger, err := decodeFile(c.transactionsFile, func(r io.Reader) (*attribution.Ledger, error) {
		return attribution.DecodeTransactions(r, c.currency)
	})
	if err != nil {
		return nil, err
	}

	benchmarks, err := parseOverrides(c.benchmarks)
	if err != nil {
		return nil, fmt.Errorf("parsing -benchmark: %w", err)
	}
	expenses, err := parseRatioOverrides(c.expenses)
	if err != nil {
		return nil, fmt.Errorf("parsing -expense: %w", err)
	}

	apiKey := os.Getenv("EODHD_API_TOKEN")
	if apiKey == "" {
		return nil, errors.New("EODHD_API_TOKEN is not set")
	}

	level := zerolog.WarnLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()

	client := eodhd.New(apiKey)
	if funds := fundTickers(securities); len(funds) > 0 {
		fetched, err := client.ExpenseRatios(ctx, funds)
		if err != nil {
			return nil, fmt.Errorf("fetching expense ratios: %w", err)
		}
		expenses = mergeRatios(fetched, expenses)
	}

	service := attribution.NewService(client,
		attribution.WithLogger(log),
		attribution.WithCustodian(attribution.CustodianFor(c.custodian)),
		attribution.WithBenchmarkOverrides(benchmarks),
		attribution.WithExpenseRatios(expenses),
	)
	return service.Analyze(ctx, holdings, slices.Collect(ledger.All()), securities, c.months)
}

// decodeFile opens a path and decodes it with the given decoder.
func decodeFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("decoding %q: %w", path, err)
	}
	return v, nil
}

// fundTickers lists the fund tickers whose expense ratio is worth fetching
// from the fundamentals endpoint.
func fundTickers(securities *attribution.Securities) []string {
	var funds []string
	for sec := range securities.All() {
		if sec.IsFund() && !sec.CashEquivalent() {
			funds = append(funds, sec.Ticker())
		}
	}
	return funds
}

// mergeRatios layers the flag-supplied expense ratios over the fetched
// ones. The flags win.
func mergeRatios(fetched, flags map[string]float64) map[string]float64 {
	if len(fetched) == 0 {
		return flags
	}
	m := make(map[string]float64, len(fetched)+len(flags))
	for ticker, ratio := range fetched {
		m[ticker] = ratio
	}
	for ticker, ratio := range flags {
		m[ticker] = ratio
	}
	return m
}

// parseOverrides parses 'KEY=VALUE,KEY=VALUE' flags.
func parseOverrides(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	m := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("%q is not of the form KEY=VALUE", pair)
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return m, nil
}

// parseRatioOverrides parses 'TICKER=0.0049,...' flags.
func parseRatioOverrides(s string) (map[string]float64, error) {
	pairs, err := parseOverrides(s)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		return nil, nil
	}
	m := make(map[string]float64, len(pairs))
	for ticker, value := range pairs {
		ratio, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("ratio for %s: %w", ticker, err)
		}
		m[ticker] = ratio
	}
	return m, nil
}
