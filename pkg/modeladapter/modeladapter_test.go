package modeladapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/germanamz/ultima/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultClient(t *testing.T) {
	a := modeladapter.New("http://localhost:11434", modeladapter.Auth{}, nil)
	assert.Nil(t, a.Client)
}

func TestNewRequest_BearerAuth(t *testing.T) {
	a := modeladapter.New("https://api.example.com", modeladapter.Auth{Key: "sk-test"}, nil)

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/messages", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/messages", req.URL.String())
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
}

func TestNewRequest_CustomHeaderWithScheme(t *testing.T) {
	auth := modeladapter.Auth{Key: "sk-test", Header: "x-api-key", Scheme: "Token"}
	a := modeladapter.New("https://api.example.com", auth, nil)

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/chat", nil)
	require.NoError(t, err)
	assert.Equal(t, "Token sk-test", req.Header.Get("x-api-key"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequest_NoAuth(t *testing.T) {
	a := modeladapter.New("http://localhost:11434", modeladapter.Auth{}, nil)

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/api/tags", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequest_KeyFuncTakesPrecedence(t *testing.T) {
	auth := modeladapter.Auth{
		Key: "static",
		KeyFunc: func(context.Context) (string, error) {
			return "oauth-token", nil
		},
	}
	a := modeladapter.New("https://api.example.com", auth, nil)

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/messages", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer oauth-token", req.Header.Get("Authorization"))
}

func TestNewRequest_KeyFuncError(t *testing.T) {
	auth := modeladapter.Auth{
		KeyFunc: func(context.Context) (string, error) {
			return "", errors.New("no credentials")
		},
	}
	a := modeladapter.New("https://api.example.com", auth, nil)

	_, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/messages", nil)
	assert.ErrorContains(t, err, "no credentials")
}

func TestNewRequest_ExtraHeaders(t *testing.T) {
	a := modeladapter.New("https://api.example.com", modeladapter.Auth{}, nil)
	a.Headers = map[string]string{
		"anthropic-version": "2023-06-01",
		"x-custom":          "value",
	}

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/messages", nil)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))
	assert.Equal(t, "value", req.Header.Get("x-custom"))
}

func TestPostJSON_Success(t *testing.T) {
	type reqBody struct {
		Model string `json:"model"`
	}
	type respBody struct {
		Response string `json:"response"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got reqBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "llama2", got.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(respBody{Response: "hi"})
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())

	var dest respBody
	err := a.PostJSON(context.Background(), "/api/generate", reqBody{Model: "llama2"}, &dest)
	require.NoError(t, err)
	assert.Equal(t, "hi", dest.Response)
}

func TestPostJSON_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())

	err := a.PostJSON(context.Background(), "/v1/messages", map[string]string{"model": "m"}, nil)
	assert.ErrorContains(t, err, "unexpected status 401")

	var se *modeladapter.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "invalid token")
}

func TestPostJSON_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())

	err := a.PostJSON(context.Background(), "/v1/messages", map[string]string{}, nil)

	var rle *modeladapter.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 7*time.Second, rle.RetryAfter)
	assert.Equal(t, "slow down", rle.Body)
}

func TestPostJSON_MarshalError(t *testing.T) {
	a := modeladapter.New("https://api.example.com", modeladapter.Auth{}, nil)

	err := a.PostJSON(context.Background(), "/v1/chat", make(chan int), nil)
	assert.ErrorContains(t, err, "marshal payload")
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/version", r.URL.Path)
		_, _ = w.Write([]byte(`{"version":"0.5.7"}`))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())

	var dest struct {
		Version string `json:"version"`
	}
	require.NoError(t, a.GetJSON(context.Background(), "/api/version", &dest))
	assert.Equal(t, "0.5.7", dest.Version)
}

func TestGetJSON_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := modeladapter.New(url, modeladapter.Auth{}, nil)
	a.Timeout = time.Second

	err := a.GetJSON(context.Background(), "/api/tags", nil)
	assert.ErrorContains(t, err, "do request")
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, modeladapter.Auth{}, srv.Client())

	var dest map[string]any
	err := a.GetJSON(context.Background(), "/api/tags", &dest)
	assert.ErrorContains(t, err, "decode response")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Zero(t, modeladapter.ParseRetryAfter(""))
	assert.Zero(t, modeladapter.ParseRetryAfter("soon"))
	assert.Equal(t, 30*time.Second, modeladapter.ParseRetryAfter("30"))

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	assert.Zero(t, modeladapter.ParseRetryAfter(past))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	assert.Greater(t, modeladapter.ParseRetryAfter(future), 50*time.Minute)
}
