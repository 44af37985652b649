package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// OpenAIClient calls the chat completions endpoint.
type OpenAIClient struct {
	httpClient HTTPClient
	apiKey     string
	model      string
	url        string
	logger     *slog.Logger
}

func NewOpenAIClient(httpClient HTTPClient, apiKey, model string, logger *slog.Logger) *OpenAIClient {
	if model == "" {
		model = DefaultGPTModel
	}
	return &OpenAIClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		url:        openAIURL,
		logger:     orDiscard(logger),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("openai request", "model", c.model, "bytes", len(body))

	var out chatResponse
	if err := send(c.httpClient, ProviderGPT, req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
