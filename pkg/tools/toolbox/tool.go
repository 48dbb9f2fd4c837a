package toolbox

import (
	"context"
	"encoding/json"
)

// Handler runs a tool with its JSON arguments and returns a text result.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is a named operation with a JSON Schema for its arguments.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}
