// Package openai implements the advisory provider for OpenAI-compatible
// chat completion endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
)

const maxRetries = 3

type Provider struct {
	config *Config
	client *http.Client
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "completion request is required", "openai")
	}

	body, err := json.Marshal(p.buildChatRequest(req))
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "failed to marshal request", "openai", err)
	}

	resp, err := p.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "failed to decode response", "openai", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "reply carries no choices", "openai")
	}

	out := &ai.CompletionResponse{
		Content:      chatResp.Choices[0].Message.Content,
		FinishReason: chatResp.Choices[0].FinishReason,
		Model:        chatResp.Model,
		CreatedAt:    time.Unix(chatResp.Created, 0),
	}
	if chatResp.Usage != nil {
		out.Usage = &ai.TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		}
	}
	return out, nil
}

func (p *Provider) buildChatRequest(req *ai.CompletionRequest) *chatRequest {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	return &chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// doWithRetry retries network failures and 429 replies with exponential
// backoff; other statuses are returned to the caller as-is.
func (p *Provider) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	endpoint := strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to create request", "openai", err)
		}
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed after retries", "openai", err)
			}
			select {
			case <-ctx.Done():
				return nil, ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "request canceled", "openai", ctx.Err())
			case <-time.After(time.Duration(math.Pow(2, float64(attempt))) * time.Second):
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if attempt == maxRetries-1 {
				return nil, ai.NewProviderError(ai.ErrTypeRateLimit, "rate limit exceeded", "openai")
			}
			retryAfter := 1
			if header := resp.Header.Get("Retry-After"); header != "" {
				if seconds, err := strconv.Atoi(header); err == nil {
					retryAfter = seconds
				}
			}
			select {
			case <-ctx.Done():
				return nil, ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "request canceled", "openai", ctx.Err())
			case <-time.After(time.Duration(retryAfter) * time.Second):
			}
			continue
		}

		return resp, nil
	}

	return nil, ai.NewProviderError(ai.ErrTypeNetwork, "max retries exceeded", "openai")
}

func (p *Provider) handleErrorResponse(resp *http.Response) error {
	message := fmt.Sprintf("request failed with status %d", resp.StatusCode)
	if body, err := io.ReadAll(resp.Body); err == nil {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
	}

	errType := ai.ErrTypeProvider
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = ai.ErrTypeAuthentication
	case http.StatusBadRequest:
		errType = ai.ErrTypeValidation
	}

	e := ai.NewProviderError(errType, message, "openai")
	e.StatusCode = resp.StatusCode
	return e
}
