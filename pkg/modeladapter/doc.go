// Package modeladapter is the HTTP base embedded by the providers that talk
// to a JSON API (the Ollama daemon and the Anthropic Messages API).
//
// It contains:
//   - embeddable [ModelAdapter] struct with auth, custom headers, and JSON request helpers
//   - typed [RateLimitError] and [StatusError] for non-2xx responses
//   - [RateLimitInfo] captured from quota headers via a [RateLimitHeaderParser]
//   - [github.com/germanamz/ultima/pkg/modeladapter/usage] — thread-safe token usage tracker
//
// Requests are sent once. There is no retry or backoff: callers that want a
// different outcome move on to another provider.
package modeladapter
