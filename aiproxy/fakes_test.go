package aiproxy

import (
	"context"
	"sync"
	"time"

	"github.com/wenhao1996/jikelens/llm"
)

// fakeClock advances instantly on sleep and records every sleep duration.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scripted is one canned transport outcome, consumed in send order.
type scripted struct {
	reply string
	err   error
}

// fakeTransport replays a script across all sessions it opens. Once the
// script is exhausted every further send replies "OK".
type fakeTransport struct {
	script   []scripted
	sends    int
	prompts  []string
	sessions []string
}

func (t *fakeTransport) Name() string { return "fake" }

func (t *fakeTransport) NewSession(_ context.Context, model string) (llm.ChatSession, error) {
	t.sessions = append(t.sessions, model)
	return &fakeSession{transport: t}, nil
}

type fakeSession struct {
	transport *fakeTransport
}

func (s *fakeSession) Send(_ context.Context, text string) (string, error) {
	t := s.transport
	t.sends++
	t.prompts = append(t.prompts, text)
	if len(t.script) == 0 {
		return "OK", nil
	}
	next := t.script[0]
	t.script = t.script[1:]
	return next.reply, next.err
}

func testCatalog() []Model {
	return []Model{
		{Name: "model-a", MaxCallsPerMinute: 100, MaxCallsPerDay: 1000},
		{Name: "model-b", MaxCallsPerMinute: 100, MaxCallsPerDay: 1000},
		{Name: "model-c", MaxCallsPerMinute: 100, MaxCallsPerDay: 1000},
	}
}
