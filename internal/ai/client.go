package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	DefaultGeminiModel = "gemini-pro"
	DefaultGPTModel    = "gpt-3.5-turbo"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1/models"
	openAIURL     = "https://api.openai.com/v1/chat/completions"
)

var (
	// ErrMissingAPIKey means the assistant has not been configured yet.
	ErrMissingAPIKey = errors.New("AI API key not configured")
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Provider selects the LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGPT    Provider = "gpt"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderGPT:
		return ProviderGPT, nil
	}
	return "", fmt.Errorf("unknown AI provider %q", s)
}

func (p Provider) Label() string {
	if p == ProviderGPT {
		return "GPT"
	}
	return "Gemini"
}

// HTTPClient abstracts HTTP requests for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client completes one prompt against a provider.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// APIError is a non-2xx provider response.
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider.Label(), e.StatusCode, e.Message)
}

// Models picks the model name per provider.
type Models struct {
	Gemini string
	GPT    string
}

// NewClient builds the client for provider p.
func NewClient(p Provider, httpClient HTTPClient, apiKey string, models Models, logger *slog.Logger) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	logger = orDiscard(logger)
	switch p {
	case ProviderGemini:
		return NewGeminiClient(httpClient, apiKey, models.Gemini, logger), nil
	case ProviderGPT:
		return NewOpenAIClient(httpClient, apiKey, models.GPT, logger), nil
	}
	return nil, fmt.Errorf("unknown AI provider %q", p)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// errorEnvelope matches the error body shape both providers share.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func readAPIError(p Provider, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := ""
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Provider: p, StatusCode: resp.StatusCode, Message: msg}
}

func send(httpClient HTTPClient, p Provider, req *http.Request, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Label(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(p, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", p.Label(), err)
	}
	return nil
}
