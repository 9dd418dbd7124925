package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"litman/internal/services"
)

const (
	completionsPath    = "chat/completions"
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBody       = 2000
)

// Config captures the runtime settings required to talk to the completion API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Title   string
}

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single chat-completion call.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// Timeout bounds this call only; zero uses the client default.
	Timeout time.Duration
}

// Client wraps an OpenAI-compatible chat completion API. It performs exactly
// one HTTP attempt per call; retry policy belongs to the caller.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a completion client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
			Referer: strings.TrimSpace(cfg.Referer),
			Title:   strings.TrimSpace(cfg.Title),
		},
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.endpoint = completionsEndpoint(client.cfg.BaseURL)
	return client
}

// Endpoint returns the resolved chat-completions URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func completionsEndpoint(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/"+completionsPath) {
		return base
	}
	joined, err := url.JoinPath(base, completionsPath)
	if err != nil {
		return base + "/" + completionsPath
	}
	return joined
}

// StatusError reports a non-200 response. It matches services.ErrHTTPStatus,
// and services.ErrRateLimited when the status is 429.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
	// HasRetryAfter is false when the server suggested no wait.
	HasRetryAfter bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case services.ErrHTTPStatus:
		return true
	case services.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// TransportError wraps failures below the HTTP status layer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string   { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Transport() bool { return true }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
		// Some providers return the streaming schema even when stream=false.
		Delta chatCompletionMessage `json:"delta"`
		Text  string                `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatCompletionMessage struct {
	Content string `json:"content"`
}

// Complete issues one chat-completion request and returns choices[0].message.content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", "complete", "api key required", nil)
	}
	if len(req.Messages) == 0 {
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "at least one message required", nil)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	encoded, err := json.Marshal(chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm request: encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("llm request: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		httpReq.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(ctx, callCtx, err, timeout)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(ctx, callCtx, err, timeout)
	}

	if resp.StatusCode != http.StatusOK {
		text := strings.TrimSpace(string(body))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncateBody(text)}
		statusErr.RetryAfter, statusErr.HasRetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"), text)
		return "", statusErr
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("%w: decode response: %v (payload snippet: %s)",
			services.ErrMalformedResponse, err, summarizePayloadSnippet(string(body)))
	}
	if completion.Error != nil {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(completion.Error.Message)}
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices (payload snippet: %s)",
			services.ErrMalformedResponse, summarizePayloadSnippet(string(body)))
	}
	choice := completion.Choices[0]
	content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text)
	if content == "" {
		return "", fmt.Errorf("%w: empty content (payload snippet: %s)",
			services.ErrMalformedResponse, summarizePayloadSnippet(string(body)))
	}
	return content, nil
}

// HealthCheck issues a minimal completion to verify the key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Complete(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: "Reply with the single word OK."},
			{Role: "user", Content: "ping"},
		},
		MaxTokens: 8,
		Timeout:   30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	return nil
}

// classifyTransport separates call-scoped timeouts from caller cancellation and
// plain connection failures.
func classifyTransport(parent, callCtx context.Context, err error, timeout time.Duration) error {
	if parent.Err() != nil {
		return fmt.Errorf("llm request: %w", parent.Err())
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: no response within %s", services.ErrNetworkTimeout, timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", services.ErrNetworkTimeout, err)
	}
	return &TransportError{Err: err}
}

var retryAfterBodyPattern = regexp.MustCompile(`(\d+)\s*seconds?`)

// ParseRetryAfter extracts a suggested wait from a Retry-After header (seconds
// or HTTP date) or, failing that, from "<N> seconds" in the response body.
func ParseRetryAfter(header, body string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second, true
		}
		if when, err := http.ParseTime(header); err == nil {
			delay := time.Until(when)
			if delay < 0 {
				delay = 0
			}
			return delay.Round(time.Second), true
		}
	}
	if match := retryAfterBodyPattern.FindStringSubmatch(body); match != nil {
		if seconds, err := strconv.Atoi(match[1]); err == nil {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return 0, false
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) > maxErrorBody {
		return string(runes[:maxErrorBody]) + "..."
	}
	return body
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
