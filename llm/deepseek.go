// DeepSeek transport using the go-openai library.
//
// Uses the OpenAI-compatible API with a different base URL. Sessions share
// the openaiSession history-replay implementation.

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekTransport implements Transport for DeepSeek.
type DeepSeekTransport struct {
	client *openai.Client
}

// NewDeepSeekTransport creates a DeepSeek transport.
func NewDeepSeekTransport(apiKey string) *DeepSeekTransport {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL
	return &DeepSeekTransport{client: openai.NewClientWithConfig(config)}
}

// Name returns the backend name.
func (t *DeepSeekTransport) Name() string {
	return "deepseek"
}

// NewSession opens a fresh chat session bound to the named model.
func (t *DeepSeekTransport) NewSession(_ context.Context, model string) (ChatSession, error) {
	return &openaiSession{client: t.client, model: model}, nil
}

// Verify DeepSeekTransport implements Transport
var _ Transport = (*DeepSeekTransport)(nil)
