// Package agent lets a Gemini model comment on portfolio analyses, and run
// them on demand through function calls.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Model is the default Gemini model.
const Model = "gemini-2.5-flash"

// Expert represent a chat with a model playing a given role.
type Expert struct {
	Name        string
	Description string
	ModelName   string
	Config      *genai.GenerateContentConfig
	Library     Library // answers the function calls of the model, nil when it has no tools
	chat        *genai.Chat
}

// Start opens the chat session.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start %s chat: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert, answers its function calls, and returns its final text.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("expert %s is not started", e.Name)
	}
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from expert %s", e.Name)
	}

	var text strings.Builder
	var calls []*genai.Part
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.FunctionCall == nil {
			text.WriteString(p.Text)
			continue
		}
		if e.Library == nil {
			return "", fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		log.Info().Str("expert", e.Name).Str("function", p.FunctionCall.Name).Interface("args", p.FunctionCall.Args).Msg("function call")
		calls = append(calls, &genai.Part{FunctionResponse: e.Library(ctx, p.FunctionCall)})
	}
	if len(calls) > 0 {
		// Send back the responses until the model answers with text.
		return e.Ask(ctx, calls...)
	}
	return text.String(), nil
}
