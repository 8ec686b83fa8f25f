package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/attribution/renderer"
	"github.com/google/subcommands"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	inputFlags
	asJSON bool
}

func (*analyzeCmd) Name() string { return "analyze" }

func (*analyzeCmd) Synopsis() string {
	return "reconstruct the portfolio's recent months and compare them to a benchmark"
}

func (*analyzeCmd) Usage() string {
	return `pra analyze [-securities <file>] [-holdings <file>] [-transactions <file>] [-months <n>]

  Reconstruct the portfolio over its last complete months from the
  current holdings and the transaction history, then compare its
  performance against a shadow portfolio of low-cost index proxies
  receiving the same external flows.

  Market data comes from EODHD; set EODHD_API_TOKEN.

Usage Examples:
# Analyze the last year of a Schwab export.
$ pra analyze -custodian schwab -months 12

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	c.inputFlags.SetFlags(f)
	f.BoolVar(&c.asJSON, "json", false, "print the raw result as JSON instead of the report")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := c.analyze(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderReport(renderer.NewReport(result)))
	return subcommands.ExitSuccess
}
