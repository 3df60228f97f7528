package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/metrics"
	"github.com/pageza/culina-ai/backend/pkg/logger"
	"go.uber.org/zap"
)

// maxUpstreamBody caps how much of an error body is kept for diagnostics
const maxUpstreamBody = 2048

// Completer sends a system and a user message to a chat-completion model
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body sent to the gateway
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompletionClient talks to an OpenAI-compatible chat completion gateway
type CompletionClient struct {
	apiURL       string
	apiKey       string
	model        string
	timeout      time.Duration
	maxRetries   int
	initialDelay time.Duration
	httpClient   *http.Client
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// CompletionOption customises a CompletionClient
type CompletionOption func(*CompletionClient)

// WithHTTPClient replaces the default http client
func WithHTTPClient(c *http.Client) CompletionOption {
	return func(cc *CompletionClient) { cc.httpClient = c }
}

// WithRetryDelay sets the first backoff interval
func WithRetryDelay(d time.Duration) CompletionOption {
	return func(cc *CompletionClient) { cc.initialDelay = d }
}

// NewCompletionClient creates a new CompletionClient instance
func NewCompletionClient(cfg *config.Config, m *metrics.Metrics, log *zap.Logger, opts ...CompletionOption) *CompletionClient {
	c := &CompletionClient{
		apiURL:       cfg.LLMAPIURL,
		apiKey:       cfg.LLMAPIKey,
		model:        cfg.LLMModel,
		timeout:      cfg.LLMTimeout,
		maxRetries:   cfg.LLMMaxRetries,
		initialDelay: 500 * time.Millisecond,
		httpClient:   &http.Client{},
		metrics:      m,
		logger:       log.Named("completion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete returns the content of the first choice.
// Transport errors, 429 and 5xx answers are retried with exponential backoff.
func (c *CompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(CompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialDelay
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	attempt := 0
	operation := func() (string, error) {
		attempt++
		content, err := c.send(ctx, body)
		if err == nil {
			c.metrics.CountAttempt("ok")
			return content, nil
		}
		if ctx.Err() != nil {
			c.metrics.CountAttempt("canceled")
			return "", backoff.Permanent(fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()))
		}
		var upstream *UpstreamError
		if errors.As(err, &upstream) && !upstream.Retryable() {
			c.metrics.CountAttempt("rejected")
			return "", backoff.Permanent(err)
		}
		c.metrics.CountAttempt("retryable_error")
		return "", err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("completion attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	content, err := backoff.RetryNotifyWithData(operation, retry, notify)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ErrCanceled) {
			return "", fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
		return "", err
	}
	return content, nil
}

func (c *CompletionClient) send(ctx context.Context, body []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       logger.Truncate(string(raw), maxUpstreamBody),
		}
	}

	var result completionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: "undecodable body: " + logger.Truncate(string(raw), maxUpstreamBody)}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: "no choices in response"}
	}

	return result.Choices[0].Message.Content, nil
}
