package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Asker answers questions. A started [Expert] is one.
type Asker interface {
	Ask(ctx context.Context, parts ...*genai.Part) (string, error)
}

// Agent is an interactive chat session.
type Agent struct {
	w     io.Writer
	input *bufio.Scanner
	asker Asker
	// Print renders the answers, defaults to a plain print.
	Print func(w io.Writer, markdown string)
}

// New creates an Agent reading questions from r and writing answers to w.
func New(w io.Writer, r io.Reader, asker Asker) *Agent {
	return &Agent{w: w, input: bufio.NewScanner(r), asker: asker}
}

const prompt = "fol> "

// Run answers questions until "bye" or the end of the input. Questions
// are read from prompts first, then from the input.
func (a *Agent) Run(ctx context.Context, prompts ...string) error {
	print := a.Print
	if print == nil {
		print = func(w io.Writer, markdown string) { fmt.Fprintln(w, markdown) }
	}

	fmt.Fprintln(a.w, "Ask anything about your portfolio. Type 'bye' to exit.")
	for {
		question, ok := a.next(&prompts)
		if !ok {
			return a.input.Err()
		}
		if question == "" {
			continue
		}
		if question == "bye" {
			return nil
		}
		answer, err := a.asker.Ask(ctx, &genai.Part{Text: question})
		if err != nil {
			return err
		}
		print(a.w, answer)
	}
}

// next prints the prompt and returns the next question, ok is false at the end of the input.
func (a *Agent) next(prompts *[]string) (question string, ok bool) {
	fmt.Fprint(a.w, prompt)
	if len(*prompts) > 0 {
		question, *prompts = strings.TrimSpace((*prompts)[0]), (*prompts)[1:]
		fmt.Fprintln(a.w, question)
		return question, true
	}
	if !a.input.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.input.Text()), true
}
