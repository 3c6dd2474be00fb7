package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	model string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the portfolio analyst" }
func (*assistCmd) Usage() string {
	return `fol assist [-model <name>] [first question]

  Starts a chat with a Gemini model able to assess and optimize portfolios
  on the configured price source. Type 'bye' to exit.
  Requires the GEMINI_API_KEY environment variable to be set.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", agent.Model, "Gemini model name.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, closer, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price source: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	aligner := folio.NewAligner(p, cfg.Benchmark)
	analyst := agent.NewAnalyst(agent.AssessTool(aligner, cfg), agent.OptimizeTool(aligner, cfg), agent.TopicTool())
	analyst.ModelName = c.model
	if err := analyst.Start(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	a := agent.New(output, os.Stdin, analyst)
	a.Print = func(w io.Writer, md string) { fmt.Fprint(w, formatMarkdown(md)) }
	if err := a.Run(ctx, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
