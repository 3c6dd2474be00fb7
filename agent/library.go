package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Library answers a function call of the model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Tool is a function the model can call.
type Tool struct {
	Decl *genai.FunctionDeclaration
	// Run returns the markdown output of the call.
	Run func(ctx context.Context, args map[string]any) (string, error)
}

// Call runs the tool and wraps its outcome in a response.
func (t *Tool) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: t.Decl.Name}
	out, err := t.Run(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": out}
	return resp
}

// NewLibrary dispatches function calls to tools by name.
func NewLibrary(tools ...*Tool) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, t := range tools {
			if t.Decl.Name == call.Name {
				return t.Call(ctx, call.ID, call.Args)
			}
		}
		return &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"error": fmt.Sprintf("unknown function %s", call.Name)},
		}
	}
}

// Declarations returns the declarations of tools.
func Declarations(tools ...*Tool) []*genai.FunctionDeclaration {
	res := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		res = append(res, t.Decl)
	}
	return res
}
