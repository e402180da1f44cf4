// OpenAI transport using the go-openai library.
//
// The Chat Completions API is stateless, so the session keeps the message
// history locally and replays it on every send.

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITransport implements Transport for OpenAI.
type OpenAITransport struct {
	client *openai.Client
}

// NewOpenAITransport creates an OpenAI transport.
func NewOpenAITransport(apiKey string) *OpenAITransport {
	return &OpenAITransport{client: openai.NewClient(apiKey)}
}

// Name returns the backend name.
func (t *OpenAITransport) Name() string {
	return "openai"
}

// NewSession opens a fresh chat session bound to the named model.
func (t *OpenAITransport) NewSession(_ context.Context, model string) (ChatSession, error) {
	return &openaiSession{client: t.client, model: model}, nil
}

type openaiSession struct {
	client  *openai.Client
	model   string
	history []openai.ChatCompletionMessage
}

// Send appends the message to the session history, replays the full history,
// and records the assistant reply so later sends see it.
func (s *openaiSession) Send(ctx context.Context, text string) (string, error) {
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: s.history,
	})
	if err != nil {
		// Drop the unanswered message so a retry does not duplicate it.
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("empty response from OpenAI")
	}

	reply := resp.Choices[0].Message.Content
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	return reply, nil
}

// Verify OpenAITransport implements Transport
var _ Transport = (*OpenAITransport)(nil)
