// Package chatcompletion is the OpenAI-compatible /chat/completions transport shared by the
// openai and openrouter providers.
package chatcompletion

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

	slopplot "github.com/haowjy/slopplot-go"
)

const defaultTimeout = 120 * time.Second

// Client posts chat completion requests to one OpenAI-compatible endpoint.
type Client struct {
	provider   slopplot.ProviderID
	apiKey     string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers[key] = value
		}
	}
}

// New creates a client for the given provider. The API key must be non-empty.
func New(provider slopplot.ProviderID, apiKey, baseURL string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s API key is empty", slopplot.ErrAuthentication, provider)
	}
	if baseURL == "" {
		return nil, &slopplot.ConfigError{Field: "base_url", Value: baseURL, Reason: "must not be empty"}
	}

	c := &Client{
		provider:   provider,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    map[string]string{},
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request represents a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	Stream      bool      `json:"stream"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Response represents a chat completion response (non-streaming).
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"` // "chat.completion"
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice in the response.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason *string         `json:"finish_reason"` // "stop", "length", "content_filter"
}

// ResponseMessage is the assistant message of a choice; content may be null.
type ResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Usage represents token usage in the response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// BuildRequest converts a library request into the wire format.
func BuildRequest(req *slopplot.CompletionRequest) *Request {
	params := req.Params
	if params == nil {
		params = &slopplot.RequestParams{}
	}

	messages := make([]Message, 0, 2)
	if params.System != nil && *params.System != "" {
		messages = append(messages, Message{Role: "system", Content: *params.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.Instruction})

	return &Request{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Stop:        params.Stop,
		Stream:      false,
	}
}

// Complete sends one request and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, req *slopplot.CompletionRequest) (*slopplot.Completion, error) {
	wireReq := BuildRequest(req)

	httpReq, err := c.buildHTTPRequest(ctx, wireReq)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s request: %w", slopplot.ErrTimeout, c.provider, err)
		}
		return nil, &slopplot.ProviderError{
			Provider:  c.provider.String(),
			Message:   fmt.Sprintf("HTTP request failed: %v", err),
			Retryable: true,
			Err:       slopplot.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var chatResp Response
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return c.convertResponse(&chatResp)
}

func (c *Client) convertResponse(resp *Response) (*slopplot.Completion, error) {
	if len(resp.Choices) == 0 {
		return nil, &slopplot.ProviderError{
			Provider: c.provider.String(),
			Message:  "no choices in response",
			Err:      slopplot.ErrProviderUnavailable,
		}
	}

	choice := resp.Choices[0]
	var text string
	if choice.Message.Content != nil {
		text = *choice.Message.Content
	}
	var stopReason string
	if choice.FinishReason != nil {
		stopReason = *choice.FinishReason
	}

	metadata := map[string]interface{}{}
	if resp.ID != "" {
		metadata["id"] = resp.ID
	}
	if len(resp.Choices) > 1 {
		metadata["choices"] = len(resp.Choices)
	}

	return &slopplot.Completion{
		Text:         text,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   stopReason,
		Metadata:     metadata,
	}, nil
}

// buildHTTPRequest creates the POST /chat/completions request.
func (c *Client) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// handleErrorResponse maps error responses to library errors.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	// Try to parse structured error
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}
	if message == "" {
		message = resp.Status
	}

	providerErr := &slopplot.ProviderError{
		Provider:   c.provider.String(),
		StatusCode: resp.StatusCode,
		Message:    message,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		providerErr.Err = slopplot.ErrAuthentication
	case resp.StatusCode == http.StatusTooManyRequests:
		providerErr.Retryable = true
		providerErr.Err = slopplot.ErrRateLimited
	case resp.StatusCode == http.StatusRequestTimeout:
		providerErr.Retryable = true
		providerErr.Err = slopplot.ErrTimeout
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		providerErr.Err = slopplot.ErrConfiguration
	case resp.StatusCode == http.StatusPaymentRequired:
		providerErr.Message = "insufficient credits: " + message
		providerErr.Err = slopplot.ErrProviderUnavailable
	default:
		providerErr.Retryable = resp.StatusCode >= 500
		providerErr.Err = slopplot.ErrProviderUnavailable
	}

	return providerErr
}
