package modeladapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/germanamz/ultima/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnthropicRateLimitHeaders(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	reset := now.Add(30 * time.Second)

	tests := []struct {
		name    string
		headers map[string]string
		want    *modeladapter.RateLimitInfo
	}{
		{
			name: "all headers",
			headers: map[string]string{
				"anthropic-ratelimit-requests-remaining": "5",
				"anthropic-ratelimit-tokens-remaining":   "1000",
				"anthropic-ratelimit-requests-reset":     reset.Format(time.RFC3339),
				"anthropic-ratelimit-tokens-reset":       reset.Format(time.RFC3339),
			},
			want: &modeladapter.RateLimitInfo{RemainingRequests: 5, RemainingTokens: 1000, RequestsReset: reset, TokensReset: reset},
		},
		{
			name:    "partial",
			headers: map[string]string{"anthropic-ratelimit-requests-remaining": "3"},
			want:    &modeladapter.RateLimitInfo{RemainingRequests: 3},
		},
		{
			name: "duration reset",
			headers: map[string]string{
				"anthropic-ratelimit-requests-remaining": "2",
				"anthropic-ratelimit-requests-reset":     "1m30s",
			},
			want: &modeladapter.RateLimitInfo{RemainingRequests: 2, RequestsReset: now.Add(90 * time.Second)},
		},
		{
			name: "garbage reset",
			headers: map[string]string{
				"anthropic-ratelimit-tokens-remaining": "7",
				"anthropic-ratelimit-tokens-reset":     "soon",
			},
			want: &modeladapter.RateLimitInfo{RemainingTokens: 7},
		},
		{name: "none", headers: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}

			assert.Equal(t, tt.want, modeladapter.ParseAnthropicRateLimitHeaders(h, now))
		})
	}
}

func TestLastRateLimitInfo(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("anthropic-ratelimit-requests-remaining", "9")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())
	a.RateLimitHeaders = modeladapter.ParseAnthropicRateLimitHeaders

	assert.Nil(t, a.LastRateLimitInfo())

	require.NoError(t, a.GetJSON(context.Background(), "/", nil))

	info := a.LastRateLimitInfo()
	require.NotNil(t, info)
	assert.Equal(t, 9, info.RemainingRequests)

	// A response without quota headers keeps the previous value.
	require.NoError(t, a.GetJSON(context.Background(), "/", nil))
	assert.Equal(t, 9, a.LastRateLimitInfo().RemainingRequests)
}

func TestLastRateLimitInfo_NoParser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("anthropic-ratelimit-requests-remaining", "9")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())
	require.NoError(t, a.GetJSON(context.Background(), "/", nil))

	assert.Nil(t, a.LastRateLimitInfo())
}
