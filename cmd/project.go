package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/attribution/montecarlo"
	"github.com/etnz/attribution/renderer"
	"github.com/google/subcommands"
)

// projectCmd holds the flags for the 'project' subcommand.
type projectCmd struct {
	initial      float64
	contribution float64
	years        int
	annualReturn float64
	volatility   float64
	paths        int
	tails        string
	seed         uint64
	currency     string
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project future balances with a Monte Carlo simulation" }
func (*projectCmd) Usage() string {
	return `pra project -initial <amount> [-monthly <amount>] [-years <n>] [-return <rate>] [-volatility <rate>]

  Simulate thousands of future return paths and report the balance
  distribution as percentile bands, with the odds of beating the money
  put in.

Usage Examples:
# 25 years of 500 a month on top of 10000, with fat tails.
$ pra project -initial 10000 -monthly 500 -years 25 -tails fat

`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.initial, "initial", 0, "starting balance")
	f.Float64Var(&c.contribution, "monthly", 0, "monthly contribution")
	f.IntVar(&c.years, "years", 10, "projection horizon in years")
	f.Float64Var(&c.annualReturn, "return", 0.07, "expected annual return, 0.07 for 7%")
	f.Float64Var(&c.volatility, "volatility", 0.15, "annual volatility, 0.15 for 15%")
	f.IntVar(&c.paths, "paths", 10000, "number of simulated paths")
	f.StringVar(&c.tails, "tails", "normal", "return distribution tails (normal, fat, extreme)")
	f.Uint64Var(&c.seed, "seed", 0, "random seed, fixed for a reproducible projection")
	f.StringVar(&c.currency, "currency", "USD", "reporting currency")
}

func (c *projectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tails, err := montecarlo.ParseTails(c.tails)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg := montecarlo.Config{
		InitialBalance:      c.initial,
		MonthlyContribution: c.contribution,
		Years:               c.years,
		AnnualReturn:        c.annualReturn,
		AnnualVolatility:    c.volatility,
		Paths:               c.paths,
		Tails:               tails,
		Seed:                c.seed,
	}
	proj, err := montecarlo.Run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderProjection(renderer.NewProjection(cfg, proj, c.currency)))
	return subcommands.ExitSuccess
}
