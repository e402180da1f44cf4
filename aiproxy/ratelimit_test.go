package aiproxy

import (
	"testing"
	"time"
)

var limitTestModel = Model{Name: "m", MaxCallsPerMinute: 3, MaxCallsPerDay: 10}

func TestRateLimiterMinuteCeiling(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(limitTestModel, start)

	for i := 0; i < limitTestModel.MaxCallsPerMinute; i++ {
		status, _ := limiter.Check(start)
		if status != RateProceed {
			t.Fatalf("call %d: status = %v, want proceed", i, status)
		}
		limiter.RecordAttempt()
	}

	// Ceiling reached inside the window.
	now := start.Add(20 * time.Second)
	status, wait := limiter.Check(now)
	if status != RateMinuteLimit {
		t.Fatalf("status = %v, want minute_limit", status)
	}
	if wait != 40*time.Second {
		t.Errorf("wait = %v, want 40s", wait)
	}

	// Past the window the counter rolls over and calls proceed again.
	now = start.Add(61 * time.Second)
	status, _ = limiter.Check(now)
	if status != RateProceed {
		t.Fatalf("status after rollover = %v, want proceed", status)
	}
	perMinute, _ := limiter.Snapshot()
	if perMinute != 0 {
		t.Errorf("calls this minute after rollover = %d, want 0", perMinute)
	}
}

func TestRateLimiterDayCeiling(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(limitTestModel, start)

	now := start
	for i := 0; i < limitTestModel.MaxCallsPerDay; i++ {
		// Spread attempts out so the minute ceiling never interferes.
		now = now.Add(2 * time.Minute)
		status, _ := limiter.Check(now)
		if status != RateProceed {
			t.Fatalf("call %d: status = %v, want proceed", i, status)
		}
		limiter.RecordAttempt()
	}

	// Day limit holds even in a fresh minute window.
	now = now.Add(5 * time.Minute)
	status, _ := limiter.Check(now)
	if status != RateDayLimit {
		t.Fatalf("status = %v, want day_limit", status)
	}
}

func TestRateLimiterMinuteTakesPrecedenceOverDay(t *testing.T) {
	model := Model{Name: "m", MaxCallsPerMinute: 2, MaxCallsPerDay: 2}
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(model, start)

	limiter.RecordAttempt()
	limiter.RecordAttempt()

	// Both ceilings are reached; within the window the minute limit wins,
	// since it clears by waiting rather than by switching models.
	status, _ := limiter.Check(start.Add(10 * time.Second))
	if status != RateMinuteLimit {
		t.Fatalf("status = %v, want minute_limit", status)
	}

	// After rollover only the day limit remains.
	status, _ = limiter.Check(start.Add(2 * time.Minute))
	if status != RateDayLimit {
		t.Fatalf("status after rollover = %v, want day_limit", status)
	}
}

func TestRateLimiterResetMinuteWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(limitTestModel, start)

	for i := 0; i < limitTestModel.MaxCallsPerMinute; i++ {
		limiter.RecordAttempt()
	}
	limiter.ResetMinuteWindow(start.Add(30 * time.Second))

	status, _ := limiter.Check(start.Add(30 * time.Second))
	if status != RateProceed {
		t.Fatalf("status after reset = %v, want proceed", status)
	}
	perMinute, perDay := limiter.Snapshot()
	if perMinute != 0 {
		t.Errorf("calls this minute = %d, want 0", perMinute)
	}
	if perDay != limitTestModel.MaxCallsPerMinute {
		t.Errorf("calls today = %d, want %d (day counter untouched)", perDay, limitTestModel.MaxCallsPerMinute)
	}
}

func TestRateLimiterResetForModel(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(limitTestModel, start)

	limiter.RecordAttempt()
	limiter.RecordAttempt()

	replacement := Model{Name: "m2", MaxCallsPerMinute: 1, MaxCallsPerDay: 1}
	limiter.ResetForModel(replacement, start.Add(time.Second))

	perMinute, perDay := limiter.Snapshot()
	if perMinute != 0 || perDay != 0 {
		t.Errorf("counters after reset = (%d, %d), want (0, 0)", perMinute, perDay)
	}

	limiter.RecordAttempt()
	status, _ := limiter.Check(start.Add(2 * time.Second))
	if status != RateMinuteLimit {
		t.Errorf("status = %v, want minute_limit under the new model's ceiling", status)
	}
}

func TestQuotaLedgerSharesStateByModelName(t *testing.T) {
	ledger := NewQuotaLedger()

	first := ledger.StateFor("model-a")
	second := ledger.StateFor("model-a")
	if first != second {
		t.Error("same model name must share one state")
	}
	if ledger.StateFor("model-b") == first {
		t.Error("different model names must not share state")
	}

	model := Model{Name: "model-a", MaxCallsPerMinute: 5, MaxCallsPerDay: 5}

	one := &RateLimiter{}
	one.AdoptState(model, ledger.StateFor("model-a"))
	two := &RateLimiter{}
	two.AdoptState(model, ledger.StateFor("model-a"))

	one.RecordAttempt()
	one.RecordAttempt()

	_, seen := two.Snapshot()
	if seen != 2 {
		t.Errorf("second limiter sees %d calls today, want 2", seen)
	}
}
