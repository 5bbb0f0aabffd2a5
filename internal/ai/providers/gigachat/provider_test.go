package gigachat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
)

func testConfig(authURL, baseURL string) *Config {
	c := DefaultConfig()
	c.AuthKey = "dGVzdA=="
	c.ClientID = "11111111-2222-3333-4444-555555555555"
	c.AuthURL = authURL
	c.BaseURL = baseURL
	return c
}

func newAuthServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic dGVzdA==" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("RqUID") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("scope") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: token,
			ExpiresAt:   time.Now().Add(30 * time.Minute).UnixMilli(),
		})
	}))
}

func TestCompleteExchangesTokenFirst(t *testing.T) {
	auth := newAuthServer(t, "tok-1")
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Model != "GigaChat" || req.Temperature != 0.3 {
			t.Errorf("unexpected chat request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   req.Model,
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "[]"}, FinishReason: "stop"}},
			Usage:   &chatUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
		})
	}))
	defer api.Close()

	p, err := New(testConfig(auth.URL, api.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "analyze"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 12 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestCompleteReusesToken(t *testing.T) {
	authCalls := 0
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(30 * time.Minute).UnixMilli(),
		})
	}))
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}},
		})
	}))
	defer api.Close()

	p, _ := New(testConfig(auth.URL, api.URL))
	for i := 0; i < 3; i++ {
		if _, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "x"}); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}
	if authCalls != 1 {
		t.Errorf("token should be cached, auth called %d times", authCalls)
	}
}

func TestCompleteRefreshesRejectedToken(t *testing.T) {
	tokens := []string{"stale", "fresh"}
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokens[0]
		if len(tokens) > 1 {
			tokens = tokens[1:]
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: token,
			ExpiresAt:   time.Now().Add(30 * time.Minute).UnixMilli(),
		})
	}))
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}},
		})
	}))
	defer api.Close()

	p, _ := New(testConfig(auth.URL, api.URL))
	resp, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete() should recover from a revoked token, got %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestCompleteAuthFailure(t *testing.T) {
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer auth.Close()

	p, _ := New(testConfig(auth.URL, "http://127.0.0.1:0"))
	_, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "x"})

	var pe *ai.ProviderError
	if !errors.As(err, &pe) || pe.Type != ai.ErrTypeAuthentication {
		t.Errorf("want authentication error, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing auth key", func(c *Config) { c.AuthKey = "" }},
		{"missing client id", func(c *Config) { c.ClientID = "" }},
		{"missing scope", func(c *Config) { c.Scope = "" }},
		{"missing model", func(c *Config) { c.Model = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig("http://auth", "http://api")
			tt.mutate(c)
			if c.Validate() == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
