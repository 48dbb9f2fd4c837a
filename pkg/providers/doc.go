// Package providers wraps the external tools unified by ultima.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/ultima/pkg/providers/model] — per-call generation options (model name, temperature, max tokens)
//   - [github.com/germanamz/ultima/pkg/providers/provider] — Prober and Generator interfaces, the Status record, and shared errors
//   - [github.com/germanamz/ultima/pkg/providers/ollama] — local model-serving daemon over HTTP
//   - [github.com/germanamz/ultima/pkg/providers/dolphin] — node automation scripts of a Dolphin project
//   - [github.com/germanamz/ultima/pkg/providers/gemini] — the gemini command-line tool
//   - [github.com/germanamz/ultima/pkg/providers/geminiapi] — Gemini API backend used when the CLI is missing
//   - [github.com/germanamz/ultima/pkg/providers/claude] — credential-based Anthropic client
//
// This package contains no code; HTTP plumbing lives in
// [github.com/germanamz/ultima/pkg/modeladapter] and subprocess plumbing in
// [github.com/germanamz/ultima/pkg/cmdrunner].
package providers
