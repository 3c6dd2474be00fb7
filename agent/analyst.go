package agent

import (
	"context"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/docs"
	"github.com/etnz/folio/renderer"
	"google.golang.org/genai"
)

// NewAnalyst returns an expert commenting portfolio analyses, able to run new ones with tools.
func NewAnalyst(tools ...*Tool) *Expert {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a portfolio analyst. You receive markdown reports comparing a
			portfolio to a benchmark: Sharpe ratio, cumulative return, standard
			deviation and average of daily returns, final value.

			Explain in plain words what the figures mean for the investor, how the
			portfolio compares to the benchmark, and the risks of the allocation.
			Be concise. Never invent figures: use the tools to run new analyses
			when the user asks about other symbols, allocations or periods.
		`}}},
	}
	if len(tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: Declarations(tools...)}}
	}
	return &Expert{
		Name:        "Analyst",
		Description: "Portfolio analyst commenting risk and return figures.",
		ModelName:   Model,
		Config:      cfg,
		Library:     NewLibrary(tools...),
	}
}

var rangeProperties = map[string]*genai.Schema{
	"symbols": {
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: "Ticker symbols of the portfolio, e.g. AAPL, GOOG.",
	},
	"from": {Type: genai.TypeString, Description: "First day of the analysis, YYYY-MM-DD. Defaults to the configured one."},
	"to":   {Type: genai.TypeString, Description: "Last day of the analysis, YYYY-MM-DD. Defaults to the configured one."},
}

// AssessTool assesses a buy-and-hold allocation, with cfg providing the defaults.
func AssessTool(a *folio.Aligner, cfg folio.Config) *Tool {
	props := map[string]*genai.Schema{
		"allocations": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeNumber},
			Description: "Weights of each symbol, in the same order, summing to 1. Defaults to equal weights.",
		},
	}
	for k, v := range rangeProperties {
		props[k] = v
	}
	return &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "assess",
			Description: "Values a buy-and-hold portfolio and compares it to the benchmark " + cfg.Benchmark + ".",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: props, Required: []string{"symbols"}},
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report."},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			symbols, r, err := parseRange(args, cfg)
			if err != nil {
				return "", err
			}
			alloc := folio.Uniform(len(symbols))
			if _, ok := args["allocations"]; ok {
				if alloc, err = floatList(args, "allocations"); err != nil {
					return "", err
				}
			}
			res, err := folio.Assess(ctx, a, symbols, alloc, r, cfg.StartValue, cfg.StatsOptions())
			if err != nil {
				return "", err
			}
			return renderer.Assessment("Portfolio Analysis", res, cfg.Benchmark, cfg.Currency), nil
		},
	}
}

// OptimizeTool searches the allocation with the best Sharpe ratio.
func OptimizeTool(a *folio.Aligner, cfg folio.Config) *Tool {
	return &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "optimize",
			Description: "Finds the buy-and-hold allocation of symbols maximizing the Sharpe ratio, and compares it to the benchmark " + cfg.Benchmark + ".",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: rangeProperties, Required: []string{"symbols"}},
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report, with the optimal allocations."},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			symbols, r, err := parseRange(args, cfg)
			if err != nil {
				return "", err
			}
			res, err := folio.OptimizeRange(ctx, a, symbols, r, cfg.StartValue, folio.OptimizeOptions{Stats: cfg.StatsOptions()})
			if err != nil {
				return "", err
			}
			return renderer.Assessment("Optimal Portfolio", res, cfg.Benchmark, cfg.Currency), nil
		},
	}
}

func parseRange(args map[string]any, cfg folio.Config) ([]string, date.Range, error) {
	r := cfg.Range()
	var symbols []string
	list, ok := args["symbols"].([]any)
	if !ok || len(list) == 0 {
		return nil, r, fmt.Errorf("argument 'symbols' must be a non empty list of strings, got %T", args["symbols"])
	}
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, r, fmt.Errorf("argument 'symbols' must contain strings, got %T", v)
		}
		symbols = append(symbols, s)
	}
	for name, d := range map[string]*date.Date{"from": &r.From, "to": &r.To} {
		v, ok := args[name]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, r, fmt.Errorf("argument '%s' is not a string as expected but %T", name, v)
		}
		on, err := date.Parse(s)
		if err != nil {
			return nil, r, fmt.Errorf("argument '%s': %w", name, err)
		}
		*d = on
	}
	if r.IsEmpty() {
		return nil, r, fmt.Errorf("empty range %s", r)
	}
	return symbols, r, nil
}

func floatList(args map[string]any, name string) ([]float64, error) {
	list, ok := args[name].([]any)
	if !ok {
		return nil, fmt.Errorf("argument '%s' must be a list of numbers, got %T", name, args[name])
	}
	res := make([]float64, len(list))
	for i, v := range list {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("argument '%s' must contain numbers, got %T", name, v)
		}
		res[i] = f
	}
	return res, nil
}

// TopicTool reads the user documentation.
func TopicTool() *Tool {
	names, _ := docs.List()
	return &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "topic",
			Description: "Reads the documentation of fol, the tool computing the analyses: how metrics are computed, the configuration, the ledger format and the price sources.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {Type: genai.TypeString, Enum: names, Description: "Topic name."},
				},
				Required: []string{"name"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "The topic in markdown."},
		},
		Run: func(_ context.Context, args map[string]any) (string, error) {
			name, ok := args["name"].(string)
			if !ok {
				return "", fmt.Errorf("argument 'name' is not a string as expected but %T", args["name"])
			}
			return docs.Topic(name)
		},
	}
}
