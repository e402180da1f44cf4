package aiproxy

import "sync"

// QuotaLedger shares per-model rate state across analyzers that draw on
// the same quota-bearing credential. Without a ledger each analyzer keeps
// fully isolated counters, which over-counts available quota when several
// analyzers run concurrently against one API key.
//
// The ledger is an explicit, injected component, never ambient state:
// pass the same ledger to every Analyzer that shares a credential.
type QuotaLedger struct {
	mu     sync.Mutex
	clock  Clock
	states map[string]*RateState
}

// NewQuotaLedger creates an empty ledger.
func NewQuotaLedger() *QuotaLedger {
	return &QuotaLedger{clock: systemClock{}, states: make(map[string]*RateState)}
}

// StateFor returns the shared counter state for a model name, creating it
// on first use.
func (g *QuotaLedger) StateFor(name string) *RateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	state, ok := g.states[name]
	if !ok {
		state = NewRateState(g.clock.Now())
		g.states[name] = state
	}
	return state
}
