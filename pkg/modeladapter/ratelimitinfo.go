package modeladapter

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitInfo is the quota state an API reported on its last response.
type RateLimitInfo struct {
	RemainingRequests int       `json:"remaining_requests"`
	RemainingTokens   int       `json:"remaining_tokens"`
	RequestsReset     time.Time `json:"requests_reset,omitzero"`
	TokensReset       time.Time `json:"tokens_reset,omitzero"`
}

// RateLimitHeaderParser extracts rate limit info from response headers. It
// returns nil when the headers carry none. now is passed in so tests control
// the clock.
type RateLimitHeaderParser func(h http.Header, now time.Time) *RateLimitInfo

// ParseAnthropicRateLimitHeaders reads the
// anthropic-ratelimit-{requests,tokens}-{remaining,reset} headers.
func ParseAnthropicRateLimitHeaders(h http.Header, now time.Time) *RateLimitInfo {
	reqRemaining := h.Get("anthropic-ratelimit-requests-remaining")
	tokRemaining := h.Get("anthropic-ratelimit-tokens-remaining")

	if reqRemaining == "" && tokRemaining == "" {
		return nil
	}

	info := &RateLimitInfo{
		RequestsReset: parseResetTime(h.Get("anthropic-ratelimit-requests-reset"), now),
		TokensReset:   parseResetTime(h.Get("anthropic-ratelimit-tokens-reset"), now),
	}
	if v, err := strconv.Atoi(reqRemaining); err == nil {
		info.RemainingRequests = v
	}
	if v, err := strconv.Atoi(tokRemaining); err == nil {
		info.RemainingTokens = v
	}

	return info
}

// parseResetTime accepts RFC3339 or a Go duration relative to now.
func parseResetTime(val string, now time.Time) time.Time {
	if val == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.ParseDuration(val); err == nil {
		return now.Add(d)
	}

	return time.Time{}
}

// rateLimitState keeps the most recent RateLimitInfo seen by an adapter.
type rateLimitState struct {
	mu   sync.Mutex
	last *RateLimitInfo
}

func (s *rateLimitState) record(info *RateLimitInfo) {
	if info == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = info
}

func (s *rateLimitState) get() *RateLimitInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil
	}

	info := *s.last

	return &info
}
