package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/dreamroute/internal/llm/prompts"
)

// Client wraps an OpenAI-compatible API client serving a vision-capable model.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if variant == "" {
		variant = string(prompts.VariantCells)
	}
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.Variant(variant),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Ping checks that the endpoint answers and knows the model.
func (c *Client) Ping(ctx context.Context) error {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range list.Models {
		if m.ID == c.model {
			return nil
		}
	}
	slog.Warn("model not listed by endpoint", "model", c.model, "available", len(list.Models))
	return nil
}

// Transcribe sends an image to the model and returns the recognized tokens in reading order.
func (c *Client) Transcribe(ctx context.Context, image []byte, mimeType string, languages []string, hint string) ([]string, error) {
	prompt, err := prompts.Build(c.variant, languages, hint)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Transcribe this marksheet."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM transcription", "raw", raw, "tokens_used", resp.Usage.TotalTokens)

	return parseTokens(raw)
}

type transcription struct {
	Tokens []json.RawMessage `json:"tokens"`
}

// parseTokens decodes the model answer. Models sometimes wrap JSON in code
// fences or emit numbers instead of strings; both are accepted.
func parseTokens(raw string) ([]string, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var t transcription
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}

	tokens := make([]string, 0, len(t.Tokens))
	for _, rm := range t.Tokens {
		var s string
		if err := json.Unmarshal(rm, &s); err != nil {
			s = string(rm)
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			continue
		}
		tokens = append(tokens, s)
	}
	return tokens, nil
}
