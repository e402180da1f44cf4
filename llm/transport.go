// Package llm provides chat-session transports for remote LLM backends.
//
// A Transport opens multi-turn chat sessions against one backend. Each
// session is bound to a single model name and accumulates conversational
// context across sends. Transports hide:
// - API client initialization and authentication
// - Request/response format conversion
// - Conversation history bookkeeping where the API is stateless

package llm

import "context"

// ChatSession is a stateful multi-turn exchange with one model. Sends are
// strictly sequential; a session must not be used from multiple goroutines.
type ChatSession interface {
	// Send delivers one message and returns the model's text reply.
	Send(ctx context.Context, text string) (string, error)
}

// Transport opens chat sessions against a remote LLM backend.
type Transport interface {
	// Name returns the backend name (for logging/debugging).
	Name() string

	// NewSession opens a fresh session bound to the named model.
	// Any context accumulated in prior sessions is not carried over.
	NewSession(ctx context.Context, model string) (ChatSession, error)
}
