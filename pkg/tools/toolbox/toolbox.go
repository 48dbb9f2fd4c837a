// Package toolbox holds a registry of tools that can be listed and called by
// name.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Result is the outcome of a tool call. Handler errors are reported through
// IsError rather than returned, so callers can relay them verbatim.
type Result struct {
	Content string
	IsError bool
}

// ToolBox is a concurrency-safe collection of tools keyed by name.
type ToolBox struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{tools: make(map[string]Tool)}
}

// Register adds tools, replacing any with the same name.
func (tb *ToolBox) Register(tools ...Tool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns the tool registered under name.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	t, ok := tb.tools[name]

	return t, ok
}

// Merge registers every tool of other into tb.
func (tb *ToolBox) Merge(other *ToolBox) {
	tb.Register(other.Tools()...)
}

// Tools returns the registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	tb.mu.RLock()
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}
	tb.mu.RUnlock()

	slices.SortFunc(result, func(a, b Tool) int { return strings.Compare(a.Name, b.Name) })

	return result
}

// Call runs the named tool. Empty input is treated as an empty object.
func (tb *ToolBox) Call(ctx context.Context, name string, input json.RawMessage) Result {
	t, ok := tb.Get(name)
	if !ok {
		return Result{Content: fmt.Sprintf("tool not found: %s", name), IsError: true}
	}

	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	out, err := t.Handler(ctx, input)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}

	return Result{Content: out}
}
