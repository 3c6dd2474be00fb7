package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// explainCmd asks the analyst to comment an assessment.
type explainCmd struct {
	overrides
	model string
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "assess a portfolio and let Gemini comment the figures" }
func (*explainCmd) Usage() string {
	return `fol explain [-symbols <list>] [-allocations <list>] [-from <date>] [-to <date>] [-model <name>]

  Runs the same analysis as 'assess' and sends the report to a Gemini model
  for a plain words commentary.
  Requires the GEMINI_API_KEY environment variable to be set.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	c.overrides.setFlags(f, true)
	f.StringVar(&c.model, "model", agent.Model, "Gemini model name.")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	md, _, err := assess(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assessing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	analyst := agent.NewAnalyst(agent.TopicTool())
	analyst.ModelName = c.model
	if err := analyst.Start(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	answer, err := analyst.Ask(ctx, &genai.Part{Text: "Explain this analysis:\n\n" + md})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Analyst failed:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(answer)
	return subcommands.ExitSuccess
}
