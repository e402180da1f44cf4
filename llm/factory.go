// Transport factory.
//
// Maps backend names to transports and knows which environment variable
// carries each backend's API key.

package llm

import (
	"fmt"
	"os"
	"strings"
)

// TransportType represents supported LLM backends.
type TransportType int

const (
	// TransportGemini is the Google Gemini backend.
	TransportGemini TransportType = iota
	// TransportOpenAI is the OpenAI backend.
	TransportOpenAI
	// TransportAnthropic is the Anthropic backend.
	TransportAnthropic
	// TransportDeepSeek is the DeepSeek backend.
	TransportDeepSeek
)

// String returns the string representation of the transport type.
func (t TransportType) String() string {
	switch t {
	case TransportGemini:
		return "gemini"
	case TransportOpenAI:
		return "openai"
	case TransportAnthropic:
		return "anthropic"
	case TransportDeepSeek:
		return "deepseek"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this backend's API key.
func (t TransportType) EnvVar() string {
	switch t {
	case TransportGemini:
		return "GEMINI_API_KEY"
	case TransportOpenAI:
		return "OPENAI_API_KEY"
	case TransportAnthropic:
		return "ANTHROPIC_API_KEY"
	case TransportDeepSeek:
		return "DEEPSEEK_API_KEY"
	default:
		return ""
	}
}

// ParseTransportType parses a backend from string (case-insensitive).
func ParseTransportType(s string) (TransportType, error) {
	switch strings.ToLower(s) {
	case "gemini", "google":
		return TransportGemini, nil
	case "openai", "gpt":
		return TransportOpenAI, nil
	case "anthropic", "claude":
		return TransportAnthropic, nil
	case "deepseek":
		return TransportDeepSeek, nil
	default:
		return 0, fmt.Errorf("unknown transport: %s", s)
	}
}

// New creates a transport with an explicit API key.
func New(t TransportType, apiKey string) (Transport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", t)
	}
	switch t {
	case TransportGemini:
		return NewGeminiTransport(apiKey), nil
	case TransportOpenAI:
		return NewOpenAITransport(apiKey), nil
	case TransportAnthropic:
		return NewAnthropicTransport(apiKey), nil
	case TransportDeepSeek:
		return NewDeepSeekTransport(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown transport type: %v", t)
	}
}

// FromEnv creates a transport, reading the API key from the backend's
// environment variable.
func FromEnv(t TransportType) (Transport, error) {
	envVar := t.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", t, envVar)
	}
	return New(t, apiKey)
}
