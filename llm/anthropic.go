// Anthropic transport using the official anthropic-sdk-go.
//
// The Messages API is stateless, so the session keeps the message history
// locally and replays it on every send.

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicTransport implements Transport for Anthropic Claude.
type AnthropicTransport struct {
	client anthropic.Client
}

// NewAnthropicTransport creates an Anthropic transport.
func NewAnthropicTransport(apiKey string) *AnthropicTransport {
	return &AnthropicTransport{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name returns the backend name.
func (t *AnthropicTransport) Name() string {
	return "anthropic"
}

// NewSession opens a fresh chat session bound to the named model.
func (t *AnthropicTransport) NewSession(_ context.Context, model string) (ChatSession, error) {
	return &anthropicSession{client: t.client, model: model}, nil
}

type anthropicSession struct {
	client  anthropic.Client
	model   string
	history []anthropic.MessageParam
}

// Send appends the message to the session history, replays the full history,
// and records the assistant reply so later sends see it.
func (s *anthropicSession) Send(ctx context.Context, text string) (string, error) {
	s.history = append(s.history, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  s.history,
	})
	if err != nil {
		// Drop the unanswered message so a retry does not duplicate it.
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	reply := ""
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			reply += variant.Text
		}
	}
	if reply == "" {
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("empty response from Anthropic")
	}

	s.history = append(s.history, message.ToParam())
	return reply, nil
}

// Verify AnthropicTransport implements Transport
var _ Transport = (*AnthropicTransport)(nil)
