// Package ai talks to an OpenAI-compatible chat completion endpoint and turns
// the model's reply into command suggestions.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

const contentPath = "choices[0].message.content"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

// HTTPClient implements ports.ChatClient over net/http. Each call is a
// single stateless request; nothing is retried.
type HTTPClient struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      ports.Logger
}

// ClientOption customizes an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// NewHTTPClient builds a client from the LLM settings.
func NewHTTPClient(cfg domain.Config, logger ports.Logger, opts ...ClientOption) *HTTPClient {
	temperature := cfg.LLM.Temperature
	if temperature == 0 {
		temperature = domain.DefaultTemperature
	}
	timeout := cfg.LLM.RequestTimeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	c := &HTTPClient{
		endpoint:    cfg.ChatCompletionsURL(),
		apiKey:      cfg.LLM.APIKey,
		model:       cfg.LLM.Model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete implements ports.ChatClient.
func (c *HTTPClient) Complete(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	requestBody, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", &domain.AdvisorError{Kind: domain.AdvisorErrTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", &domain.AdvisorError{Kind: domain.AdvisorErrTransport, Err: err}
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Title", "termhelper")

	c.logger.Debug("sending chat completion", map[string]interface{}{
		"endpoint": c.endpoint,
		"model":    c.model,
		"messages": len(messages),
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.AdvisorError{Kind: domain.AdvisorErrTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.AdvisorError{Kind: domain.AdvisorErrTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.AdvisorError{
			Kind:   domain.AdvisorErrHTTP,
			Status: resp.StatusCode,
			Body:   string(body),
			Err:    errors.New(resp.Status),
		}
	}

	content, err := extractContent(body)
	if err != nil {
		return "", &domain.AdvisorError{
			Kind:   domain.AdvisorErrParse,
			Status: resp.StatusCode,
			Body:   string(body),
			Err:    err,
		}
	}
	return content, nil
}

func extractContent(body []byte) (string, error) {
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	content, err := extractJSONPath(response, contentPath)
	if err != nil {
		return "", fmt.Errorf("extract from path '%s': %w", contentPath, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("empty message content")
	}
	return content, nil
}

var _ ports.ChatClient = (*HTTPClient)(nil)
