package aiproxy

import (
	"sync"
	"time"
)

// RateStatus is the outcome of a quota check.
type RateStatus int

const (
	// RateProceed means the call may be issued now.
	RateProceed RateStatus = iota
	// RateMinuteLimit means the per-minute ceiling is reached; the caller
	// must wait out the remainder of the window and retry the same model.
	RateMinuteLimit
	// RateDayLimit means the per-day ceiling is reached; the caller must
	// fail over to the next model.
	RateDayLimit
)

// String returns a short name for logging.
func (s RateStatus) String() string {
	switch s {
	case RateProceed:
		return "proceed"
	case RateMinuteLimit:
		return "minute_limit"
	case RateDayLimit:
		return "day_limit"
	default:
		return "unknown"
	}
}

// RateState holds the mutable call counters for one model. It is
// mutex-protected so it can optionally be shared across analyzers that
// draw on the same quota (see QuotaLedger).
type RateState struct {
	mu                sync.Mutex
	callsThisMinute   int
	callsToday        int
	minuteWindowStart time.Time
	lastSuccessAt     time.Time
}

// NewRateState creates a zeroed state with the minute window starting now.
func NewRateState(now time.Time) *RateState {
	return &RateState{minuteWindowStart: now, lastSuccessAt: now}
}

// RateLimiter decides whether a call against the current model may proceed
// immediately, must wait out the minute window, or must be deferred to the
// next model.
//
// Minute and day limits are distinguished on purpose: a minute limit
// clears by waiting with no state loss, while a day limit requires
// switching to a model with separate quota.
type RateLimiter struct {
	model Model
	state *RateState
}

// NewRateLimiter creates a limiter for the given model with fresh state.
func NewRateLimiter(model Model, now time.Time) *RateLimiter {
	return &RateLimiter{model: model, state: NewRateState(now)}
}

// Check evaluates the quotas at the given instant. For RateMinuteLimit the
// returned duration is the remainder of the rolling minute window; the
// caller's obligation is to sleep it, call ResetMinuteWindow, and retry.
//
// An expired minute window is rolled over before the ceilings are checked,
// so a stale counter never blocks a call.
func (l *RateLimiter) Check(now time.Time) (RateStatus, time.Duration) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	elapsed := now.Sub(l.state.minuteWindowStart)
	if elapsed > time.Minute {
		l.state.callsThisMinute = 0
		l.state.minuteWindowStart = now
		elapsed = 0
	}

	if l.state.callsThisMinute >= l.model.MaxCallsPerMinute {
		return RateMinuteLimit, time.Minute - elapsed
	}
	if l.state.callsToday >= l.model.MaxCallsPerDay {
		return RateDayLimit, 0
	}
	return RateProceed, 0
}

// RecordAttempt increments both counters. Call it immediately before
// issuing the remote call, only after Check returned RateProceed.
func (l *RateLimiter) RecordAttempt() {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.callsThisMinute++
	l.state.callsToday++
}

// RecordSuccess updates the last-success timestamp.
func (l *RateLimiter) RecordSuccess(now time.Time) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.lastSuccessAt = now
}

// ResetMinuteWindow zeroes the minute counter and restarts the window.
// Called after waiting out a minute limit.
func (l *RateLimiter) ResetMinuteWindow(now time.Time) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.callsThisMinute = 0
	l.state.minuteWindowStart = now
}

// ResetForModel swaps in the new model's ceilings with fully zeroed
// counters. Used on failover when each analyzer has isolated quota.
func (l *RateLimiter) ResetForModel(model Model, now time.Time) {
	l.model = model
	l.state = NewRateState(now)
}

// AdoptState swaps in the new model's ceilings together with an existing
// (possibly shared) counter state. Counters are deliberately not zeroed:
// with a shared ledger the day count is global to the credential, and one
// analyzer switching models must not erase what others have spent.
func (l *RateLimiter) AdoptState(model Model, state *RateState) {
	l.model = model
	l.state = state
}

// TimeSinceLastSuccess returns the elapsed time since the last successful
// call.
func (l *RateLimiter) TimeSinceLastSuccess(now time.Time) time.Duration {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return now.Sub(l.state.lastSuccessAt)
}

// Snapshot returns the current counters, for logging and tests.
func (l *RateLimiter) Snapshot() (callsThisMinute, callsToday int) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.callsThisMinute, l.state.callsToday
}
