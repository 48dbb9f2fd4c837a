package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks.
var (
	_ Prober    = (*mockProvider)(nil)
	_ Generator = (*mockProvider)(nil)
)

type mockProvider struct {
	text string
	err  error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Status(context.Context) Status { return Operational("mock") }

func (m *mockProvider) Generate(_ context.Context, _ Request) (string, error) {
	return m.text, m.err
}

func TestGenerator_Success(t *testing.T) {
	p := &mockProvider{text: "hello back"}

	got, err := p.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello back", got)
}

func TestStatusConstructors(t *testing.T) {
	ok := Operational("ollama")
	assert.Equal(t, HealthOperational, ok.Health)
	assert.True(t, ok.Available)
	assert.True(t, ok.Ready())

	deg := Degraded("claude", "token expired")
	assert.Equal(t, HealthDegraded, deg.Health)
	assert.True(t, deg.Available)
	assert.True(t, deg.Ready())
	assert.Equal(t, "token expired", deg.Detail)

	bad := Failed("gemini", "not in PATH")
	assert.Equal(t, HealthFailed, bad.Health)
	assert.False(t, bad.Available)
	assert.False(t, bad.Ready())
	assert.True(t, bad.Enabled)
}

func TestStatus_ZeroValueNotReady(t *testing.T) {
	var s Status
	assert.False(t, s.Ready())
}
