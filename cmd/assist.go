package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/attribution/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	inputFlags
}

func (*assistCmd) Name() string { return "assist" }

func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant about the analysis"
}

func (*assistCmd) Usage() string {
	return `pra assist [analysis flags] [initial question]

  Run the analysis, then start an interactive session with an AI
  assistant that can explain every figure in it. Requires GEMINI_API_KEY
  in addition to the analysis inputs.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	c.inputFlags.SetFlags(f)
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	result, err := c.analyze(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	analyst := agent.NewAnalyst(result)
	researcher := agent.NewResearcher()
	a := agent.New(os.Stdout, os.Stdin, analyst, researcher)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
