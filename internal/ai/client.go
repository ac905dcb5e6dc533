// Package ai wraps the hosted completion provider behind a streaming
// interface the chat pipeline can consume (and tests can fake).
package ai

import (
	"context"
	"fmt"

	"persona-chat/backend/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatStreamer opens a streaming completion for a prompt context and invokes
// onDelta for every incremental text fragment, in arrival order. A non-nil
// return from onDelta aborts the stream.
type ChatStreamer interface {
	StreamCompletion(ctx context.Context, prompt []models.PromptMessage, onDelta func(delta string) error) error
}

// Client is the openai-go backed ChatStreamer
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

// Config holds provider settings
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int64
}

// NewClient builds a streaming completion client
func NewClient(cfg Config) *Client {
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	client := openai.NewClient(opts...)
	return &Client{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *Client) StreamCompletion(ctx context.Context, prompt []models.PromptMessage, onDelta func(delta string) error) error {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt))
	for _, m := range prompt {
		switch m.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               c.model,
		MaxCompletionTokens: openai.Int(c.maxTokens),
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("completion stream: %w", err)
	}
	return nil
}
