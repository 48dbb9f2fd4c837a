package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/ultima/pkg/providers/model"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/germanamz/ultima/pkg/tools/toolbox"
)

// Tools exposes the engine's operations as a ToolBox for the MCP server.
func (e *Engine) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(
		e.generateTool(),
		e.statusTool(),
		e.listModelsTool(),
		e.chatTool(),
		e.dolphinRunTool(),
		e.usageTool(),
	)

	return tb
}

type generateInput struct {
	Prompt      string   `json:"prompt"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
}

func (e *Engine) generateTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "generate",
		Description: "Generate text with a provider. provider may be auto (default), gemini, ollama or claude; auto tries gemini, then ollama, then claude.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"prompt":{"type":"string"},"provider":{"type":"string","enum":["auto","gemini","ollama","claude"]},"model":{"type":"string"},"temperature":{"type":"number"},"max_tokens":{"type":"integer"}},"required":["prompt"]}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in generateInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("generate: invalid input: %w", err)
			}

			if strings.TrimSpace(in.Prompt) == "" {
				return "", errors.New("generate: prompt is required")
			}

			res, err := e.Generate(ctx, in.Prompt, in.Provider, model.Model{
				Name:        in.Model,
				Temperature: in.Temperature,
				MaxTokens:   in.MaxTokens,
			})
			if err != nil {
				return "", err
			}

			return res.Text, nil
		},
	}
}

func (e *Engine) statusTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "status_report",
		Description: "Report the health of every integration (ollama, dolphin, gemini, claude).",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"refresh":{"type":"boolean"}}}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Refresh bool `json:"refresh"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("status_report: invalid input: %w", err)
			}

			if in.Refresh {
				e.Refresh()
			}

			data, err := json.MarshalIndent(e.StatusReport(ctx), "", "  ")
			if err != nil {
				return "", err
			}

			return string(data), nil
		},
	}
}

func (e *Engine) listModelsTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "list_models",
		Description: "List the models installed in the local Ollama daemon.",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
			models, err := e.ListModels(ctx)
			if err != nil {
				return "", err
			}

			return strings.Join(models, "\n"), nil
		},
	}
}

func (e *Engine) chatTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "chat",
		Description: "Send a conversation to the local Ollama daemon and return the assistant reply.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"messages":{"type":"array","items":{"type":"object","properties":{"role":{"type":"string"},"content":{"type":"string"}},"required":["role","content"]}},"model":{"type":"string"}},"required":["messages"]}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Messages []provider.Message `json:"messages"`
				Model    string             `json:"model"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("chat: invalid input: %w", err)
			}

			return e.Chat(ctx, in.Messages, model.Model{Name: in.Model})
		},
	}
}

func (e *Engine) dolphinRunTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "dolphin_run",
		Description: "Run a script from the Dolphin project's scripts directory with node and return its output.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"script":{"type":"string","description":"Script file name, e.g. dolphin.mjs"},"args":{"type":"array","items":{"type":"string"}}},"required":["script"]}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Script string   `json:"script"`
				Args   []string `json:"args"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("dolphin_run: invalid input: %w", err)
			}

			d := e.Dolphin()
			if d == nil {
				return "", fmt.Errorf("dolphin_run: %w", provider.ErrUnavailable)
			}

			return d.RunScript(ctx, in.Script, in.Args...)
		},
	}
}

func (e *Engine) usageTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "usage",
		Description: "Report token usage per provider since the server started.",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			data, err := json.MarshalIndent(e.Usage(), "", "  ")
			if err != nil {
				return "", err
			}

			return string(data), nil
		},
	}
}
