package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/logtriage/logtriage/internal/ai"
)

func testProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	c := DefaultConfig()
	c.APIKey = "sk-test"
	c.BaseURL = baseURL
	p, err := New(c)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   req.Model,
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "[]"}, FinishReason: "stop"}},
		})
	}))
	defer server.Close()

	p := testProvider(t, server.URL)
	resp, err := p.Complete(context.Background(), &ai.CompletionRequest{
		Prompt:       "analyze",
		SystemPrompt: "you are an expert",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestCompleteAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	p := testProvider(t, server.URL)
	_, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "x"})

	var pe *ai.ProviderError
	if !errors.As(err, &pe) || pe.Type != ai.ErrTypeAuthentication {
		t.Errorf("want authentication error, got %v", err)
	}
	if pe != nil && pe.Message != "bad key" {
		t.Errorf("server message should be surfaced, got %q", pe.Message)
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}},
		})
	}))
	defer server.Close()

	p := testProvider(t, server.URL)
	resp, err := p.Complete(context.Background(), &ai.CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "ok" || calls != 2 {
		t.Errorf("expected one retry, calls = %d", calls)
	}
}

func TestValidateConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Validate() == nil {
		t.Error("config without API key should fail validation")
	}
	c.APIKey = "sk-test"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
