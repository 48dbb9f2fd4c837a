package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, input json.RawMessage) (string, error) {
	return string(input), nil
}

func errorHandler(_ context.Context, _ json.RawMessage) (string, error) {
	return "", errors.New("tool failed")
}

func newEchoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "Echoes input",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler:     echoHandler,
	}
}

func TestNew(t *testing.T) {
	tb := New()
	assert.NotNil(t, tb)
	assert.Empty(t, tb.Tools())
}

func TestRegisterAndGet(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("echo"))

	got, ok := tb.Get("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo", got.Name)

	_, ok = tb.Get("missing")
	assert.False(t, ok)
}

func TestTools_SortedByName(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("status_report"), newEchoTool("generate"), newEchoTool("list_models"))

	var names []string
	for _, tool := range tb.Tools() {
		names = append(names, tool.Name)
	}

	assert.Equal(t, []string{"generate", "list_models", "status_report"}, names)
}

func TestRegisterReplaces(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("echo"))
	tb.Register(Tool{Name: "echo", Description: "v2", Handler: echoHandler})

	got, _ := tb.Get("echo")
	assert.Equal(t, "v2", got.Description)
	assert.Len(t, tb.Tools(), 1)
}

func TestMerge(t *testing.T) {
	a := New()
	a.Register(newEchoTool("a"))

	b := New()
	b.Register(newEchoTool("b"))

	a.Merge(b)
	assert.Len(t, a.Tools(), 2)
}

func TestCall(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("echo"))

	res := tb.Call(context.Background(), "echo", json.RawMessage(`{"x":1}`))
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"x":1}`, res.Content)
}

func TestCall_EmptyInput(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("echo"))

	res := tb.Call(context.Background(), "echo", nil)
	assert.Equal(t, "{}", res.Content)
}

func TestCall_NotFound(t *testing.T) {
	res := New().Call(context.Background(), "missing", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "tool not found: missing")
}

func TestCall_HandlerError(t *testing.T) {
	tb := New()
	tb.Register(Tool{Name: "fail", Handler: errorHandler})

	res := tb.Call(context.Background(), "fail", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "tool failed", res.Content)
}
