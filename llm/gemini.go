// Google Gemini transport using the official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - The SDK's stateful chat object behind the ChatSession interface

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiTransport implements Transport for Google Gemini.
type GeminiTransport struct {
	client  *genai.Client
	initErr error // Stores client initialization error for deferred reporting
}

// NewGeminiTransport creates a Gemini transport. If client initialization
// fails, the error is stored and returned when the first session is opened.
func NewGeminiTransport(apiKey string) *GeminiTransport {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiTransport{initErr: fmt.Errorf("failed to initialize Gemini client: %w", err)}
	}
	return &GeminiTransport{client: client}
}

// Name returns the backend name.
func (t *GeminiTransport) Name() string {
	return "gemini"
}

// NewSession opens a fresh chat session bound to the named model.
func (t *GeminiTransport) NewSession(ctx context.Context, model string) (ChatSession, error) {
	if t.initErr != nil {
		return nil, t.initErr
	}
	chat, err := t.client.Chats.Create(ctx, model, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

type geminiSession struct {
	chat *genai.Chat
}

// Send delivers one message through the SDK's chat object, which keeps the
// conversation history for the session.
func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	response, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("send message failed: %w", err)
	}

	reply := response.Text()
	if reply == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return reply, nil
}

// Verify GeminiTransport implements Transport
var _ Transport = (*GeminiTransport)(nil)
