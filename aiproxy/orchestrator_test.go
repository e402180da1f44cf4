package aiproxy

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errRemote = errors.New("remote call failed")

func newTestOrchestrator(t *testing.T, transport *fakeTransport, catalog []Model, cfg Config) (*Orchestrator, *fakeClock) {
	t.Helper()
	pool, err := NewPoolManager(catalog)
	if err != nil {
		t.Fatalf("NewPoolManager failed: %v", err)
	}
	clock := newFakeClock()
	orch := NewOrchestrator(transport, pool, "priming", cfg, WithClock(clock))
	return orch, clock
}

func TestOrchestratorHappyPath(t *testing.T) {
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},         // priming
		{reply: "['golang']"}, // analysis prompt
	}}
	orch, clock := newTestOrchestrator(t, transport, testCatalog(), DefaultConfig())

	reply, err := orch.Send(context.Background(), "tags", "prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "['golang']" {
		t.Errorf("reply = %q", reply)
	}
	if transport.sends != 2 {
		t.Errorf("sends = %d, want 2 (priming + prompt)", transport.sends)
	}
	if len(transport.sessions) != 1 || transport.sessions[0] != "model-a" {
		t.Errorf("sessions = %v, want one against model-a", transport.sessions)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clock.sleeps)
	}
}

func TestOrchestratorRetryThenSuccess(t *testing.T) {
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},     // priming
		{err: errRemote},  // first attempt fails
		{reply: "['ok']"}, // retry succeeds
	}}
	cfg := Config{RetryMax: 3, RetryDelay: 60 * time.Second, MaxAttempts: 32}
	orch, clock := newTestOrchestrator(t, transport, testCatalog(), cfg)

	reply, err := orch.Send(context.Background(), "tags", "prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "['ok']" {
		t.Errorf("reply = %q", reply)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 60*time.Second {
		t.Errorf("sleeps = %v, want exactly one of 60s", clock.sleeps)
	}
	// Same model throughout, no re-establishment.
	if len(transport.sessions) != 1 {
		t.Errorf("sessions = %v, want 1", transport.sessions)
	}
	if orch.CurrentModel().Name != "model-a" {
		t.Errorf("current model = %s, want model-a", orch.CurrentModel().Name)
	}
	// Success reset the consecutive-failure count.
	if orch.pool.ConsecutiveFailures() != 0 {
		t.Errorf("consecutive failures = %d, want 0", orch.pool.ConsecutiveFailures())
	}
}

func TestOrchestratorMaxRetryThenSwitch(t *testing.T) {
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},     // priming on model-a
		{err: errRemote},  // analysis fails, budget of 1 exhausted
		{reply: "ok"},     // priming on model-b after the switch
		{reply: "['ok']"}, // analysis retried on model-b
	}}
	cfg := Config{RetryMax: 1, RetryDelay: time.Second, MaxAttempts: 32}
	orch, clock := newTestOrchestrator(t, transport, testCatalog(), cfg)

	before := orch.CurrentModel().Name
	reply, err := orch.Send(context.Background(), "tags", "prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "['ok']" {
		t.Errorf("reply = %q", reply)
	}
	if orch.CurrentModel().Name == before {
		t.Errorf("model did not switch, still %s", before)
	}
	// Exactly one re-establishment, against the new model, before the
	// analysis reply was accepted.
	want := []string{"model-a", "model-b"}
	if len(transport.sessions) != 2 || transport.sessions[0] != want[0] || transport.sessions[1] != want[1] {
		t.Errorf("sessions = %v, want %v", transport.sessions, want)
	}
	// No backoff sleep on the switch path.
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clock.sleeps)
	}
}

func TestOrchestratorMinuteLimitWaits(t *testing.T) {
	catalog := []Model{
		{Name: "model-a", MaxCallsPerMinute: 1, MaxCallsPerDay: 100},
		{Name: "model-b", MaxCallsPerMinute: 1, MaxCallsPerDay: 100},
	}
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},     // priming consumes the single minute slot
		{reply: "['ok']"}, // analysis after the wait
	}}
	orch, clock := newTestOrchestrator(t, transport, catalog, DefaultConfig())

	reply, err := orch.Send(context.Background(), "tags", "prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "['ok']" {
		t.Errorf("reply = %q", reply)
	}
	// Waiting, not switching: one sleep of the remaining window and the
	// session stays with the first model.
	if len(clock.sleeps) != 1 || clock.sleeps[0] != time.Minute {
		t.Errorf("sleeps = %v, want exactly one of 1m", clock.sleeps)
	}
	if orch.CurrentModel().Name != "model-a" {
		t.Errorf("current model = %s, want model-a", orch.CurrentModel().Name)
	}
	if len(transport.sessions) != 1 {
		t.Errorf("sessions = %v, want 1 (no re-establishment)", transport.sessions)
	}
}

func TestOrchestratorDayLimitSwitchesModel(t *testing.T) {
	catalog := []Model{
		{Name: "model-a", MaxCallsPerMinute: 100, MaxCallsPerDay: 1},
		{Name: "model-b", MaxCallsPerMinute: 100, MaxCallsPerDay: 100},
	}
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},     // priming consumes model-a's whole day
		{reply: "ok"},     // priming on model-b
		{reply: "['ok']"}, // analysis on model-b
	}}
	orch, clock := newTestOrchestrator(t, transport, catalog, DefaultConfig())

	reply, err := orch.Send(context.Background(), "tags", "prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "['ok']" {
		t.Errorf("reply = %q", reply)
	}
	if orch.CurrentModel().Name != "model-b" {
		t.Errorf("current model = %s, want model-b", orch.CurrentModel().Name)
	}
	want := []string{"model-a", "model-b"}
	if len(transport.sessions) != 2 || transport.sessions[1] != want[1] {
		t.Errorf("sessions = %v, want %v", transport.sessions, want)
	}
	// A day limit never waits.
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clock.sleeps)
	}
}

func TestOrchestratorPoolExhaustion(t *testing.T) {
	catalog := []Model{{Name: "only", MaxCallsPerMinute: 100, MaxCallsPerDay: 100}}
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},    // priming
		{err: errRemote}, // analysis fails; no fallback to switch to
	}}
	cfg := Config{RetryMax: 1, RetryDelay: time.Second, MaxAttempts: 32}
	orch, _ := newTestOrchestrator(t, transport, catalog, cfg)

	_, err := orch.Send(context.Background(), "tags", "prompt")
	if !errors.Is(err, ErrNoAvailableModel) {
		t.Fatalf("error = %v, want ErrNoAvailableModel", err)
	}
}

func TestOrchestratorAttemptCeiling(t *testing.T) {
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"}, // priming
	}}
	// Every analysis attempt fails; a generous retry budget keeps the
	// machine on the same model until the attempt ceiling trips.
	for i := 0; i < 10; i++ {
		transport.script = append(transport.script, scripted{err: errRemote})
	}
	cfg := Config{RetryMax: 100, RetryDelay: time.Second, MaxAttempts: 3}
	orch, clock := newTestOrchestrator(t, transport, testCatalog(), cfg)

	_, err := orch.Send(context.Background(), "tags", "prompt")
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("error = %v, want ErrAttemptsExhausted", err)
	}
	if len(clock.sleeps) != 3 {
		t.Errorf("sleeps = %d, want 3 (one per failed attempt)", len(clock.sleeps))
	}
}

func TestOrchestratorContextCancellation(t *testing.T) {
	transport := &fakeTransport{script: []scripted{
		{reply: "ok"},    // priming
		{err: errRemote}, // failure leads into a retry sleep
	}}
	cfg := Config{RetryMax: 3, RetryDelay: time.Minute, MaxAttempts: 32}
	orch, _ := newTestOrchestrator(t, transport, testCatalog(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	if err := orch.EstablishSession(ctx); err != nil {
		t.Fatalf("EstablishSession failed: %v", err)
	}
	cancel()

	_, err := orch.Send(ctx, "tags", "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
