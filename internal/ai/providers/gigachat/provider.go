// Package gigachat implements the advisory provider for the GigaChat API:
// an OAuth key exchange followed by bearer-authenticated chat completions.
package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
)

// tokenSlack refreshes the access token this long before its advertised
// expiry.
const tokenSlack = time.Minute

type Provider struct {
	config *Config
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport
	if config.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout, Transport: transport},
	}, nil
}

func (p *Provider) Name() string {
	return "gigachat"
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
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "completion request is required", "gigachat")
	}

	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.sendChatRequest(ctx, token, p.buildChatRequest(req))
	if err != nil {
		// A rejected token may simply have been revoked server-side;
		// one forced re-exchange is attempted before giving up.
		var pe *ai.ProviderError
		if errors.As(err, &pe) && pe.Type == ai.ErrTypeAuthentication {
			token, authErr := p.refreshToken(ctx)
			if authErr != nil {
				return nil, authErr
			}
			resp, err = p.sendChatRequest(ctx, token, p.buildChatRequest(req))
		}
		if err != nil {
			return nil, err
		}
	}

	if len(resp.Choices) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "reply carries no choices", "gigachat")
	}

	out := &ai.CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
		Model:        resp.Model,
		CreatedAt:    time.Unix(resp.Created, 0),
	}
	if resp.Usage != nil {
		out.Usage = &ai.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
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

// token returns a cached access token, exchanging the auth key when none
// is held or the held one is close to expiry.
func (p *Provider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry.Add(-tokenSlack)) {
		return p.accessToken, nil
	}
	return p.authenticateLocked(ctx)
}

func (p *Provider) refreshToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticateLocked(ctx)
}

func (p *Provider) authenticateLocked(ctx context.Context) (string, error) {
	form := url.Values{"scope": {p.config.Scope}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.AuthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to create auth request", "gigachat", err)
	}
	httpReq.Header.Set("Authorization", "Basic "+p.config.AuthKey)
	httpReq.Header.Set("RqUID", p.config.ClientID)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "auth request failed", "gigachat", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errType := ai.ErrTypeProvider
		if resp.StatusCode == http.StatusUnauthorized {
			errType = ai.ErrTypeAuthentication
		}
		e := ai.NewProviderError(errType, fmt.Sprintf("auth failed with status %d", resp.StatusCode), "gigachat")
		e.StatusCode = resp.StatusCode
		return "", e
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "failed to decode auth response", "gigachat", err)
	}
	if token.AccessToken == "" {
		return "", ai.NewProviderError(ai.ErrTypeAuthentication, "auth response carries no token", "gigachat")
	}

	p.accessToken = token.AccessToken
	p.tokenExpiry = time.UnixMilli(token.ExpiresAt)
	return p.accessToken, nil
}

func (p *Provider) sendChatRequest(ctx context.Context, token string, req *chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "failed to marshal request", "gigachat", err)
	}

	endpoint := strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to create request", "gigachat", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "completion request failed", "gigachat", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "failed to decode response", "gigachat", err)
	}
	return &chatResp, nil
}

func (p *Provider) handleErrorResponse(resp *http.Response) error {
	message := fmt.Sprintf("request failed with status %d", resp.StatusCode)
	if body, err := io.ReadAll(resp.Body); err == nil {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			message = errResp.Message
		}
	}

	errType := ai.ErrTypeProvider
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = ai.ErrTypeAuthentication
	case http.StatusTooManyRequests:
		errType = ai.ErrTypeRateLimit
	case http.StatusBadRequest:
		errType = ai.ErrTypeValidation
	}

	e := ai.NewProviderError(errType, message, "gigachat")
	e.StatusCode = resp.StatusCode
	return e
}
