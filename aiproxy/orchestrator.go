package aiproxy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wenhao1996/jikelens/llm"
)

// Config holds the retry/failover knobs for an orchestrator.
type Config struct {
	// RetryMax is the consecutive-failure ceiling before a model switch.
	RetryMax int
	// RetryDelay is the fixed backoff after a non-quota failure. There is
	// no jitter: with several analyzers sharing one credential the herd
	// retries in step. Known limitation carried from production behavior.
	RetryDelay time.Duration
	// MaxAttempts bounds the total attempts (waits, retries and failovers
	// included) for one logical call. Exceeding it surfaces
	// ErrAttemptsExhausted instead of looping forever.
	MaxAttempts int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RetryMax:    3,
		RetryDelay:  60 * time.Second,
		MaxAttempts: 32,
	}
}

func (c Config) withDefaults() Config {
	out := c
	if out.RetryMax <= 0 {
		out.RetryMax = 3
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = 60 * time.Second
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 32
	}
	return out
}

// Orchestrator wraps every outbound call - session establishment and
// analysis requests alike - in one retry/failover state machine:
//
//	day quota reached      -> advance pool, reset rate state, re-prime
//	                          session, retry
//	minute quota reached   -> sleep out the window, reset it, retry
//	remote call failed     -> record failure; at RetryMax consecutive
//	                          failures switch model (with re-prime),
//	                          otherwise sleep RetryDelay and retry
//	remote call succeeded  -> reset failure count, then record the
//	                          success timestamp, return
//
// The machine is an explicit loop with a bounded attempt count; the
// context is checked before every sleep and before every new attempt.
// All state is owned by one orchestrator analyzing one content item;
// nothing here is safe for concurrent use.
type Orchestrator struct {
	transport llm.Transport
	pool      *PoolManager
	limiter   *RateLimiter
	cfg       Config
	clock     Clock
	logger    *zap.Logger
	ledger    *QuotaLedger

	priming string
	session llm.ChatSession
}

// NewOrchestrator creates an orchestrator over the given pool. The priming
// text is replayed on every session establishment, including the ones
// forced by model switches.
func NewOrchestrator(transport llm.Transport, pool *PoolManager, priming string, cfg Config, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		transport: transport,
		pool:      pool,
		cfg:       cfg.withDefaults(),
		clock:     systemClock{},
		logger:    zap.NewNop(),
		priming:   priming,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.ledger != nil {
		o.limiter = &RateLimiter{}
		o.limiter.AdoptState(pool.Current(), o.ledger.StateFor(pool.Current().Name))
	} else {
		o.limiter = NewRateLimiter(pool.Current(), o.clock.Now())
	}
	return o
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock substitutes the wall clock, for tests.
func WithClock(clock Clock) OrchestratorOption {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithQuotaLedger shares rate state with other orchestrators that draw on
// the same credential. Without it, quota counters are fully isolated.
func WithQuotaLedger(ledger *QuotaLedger) OrchestratorOption {
	return func(o *Orchestrator) { o.ledger = ledger }
}

// CurrentModel returns the model calls are currently routed to.
func (o *Orchestrator) CurrentModel() Model {
	return o.pool.Current()
}

// SessionEstablished reports whether a chat session is live.
func (o *Orchestrator) SessionEstablished() bool {
	return o.session != nil
}

// Send delivers one analysis prompt through the live session, establishing
// it first if needed, and returns the model's reply. It may block on quota
// waits and retry backoffs, and may switch models; the only errors it
// surfaces are pool exhaustion, the attempt ceiling and context
// cancellation.
func (o *Orchestrator) Send(ctx context.Context, op, prompt string) (string, error) {
	if o.session == nil {
		if err := o.EstablishSession(ctx); err != nil {
			return "", err
		}
	}
	return o.invoke(ctx, op, func(ctx context.Context) (string, error) {
		return o.session.Send(ctx, prompt)
	}, true)
}

// EstablishSession opens a chat session with the current model and sends
// the priming message, under the same retry/failover rules as any other
// call. After a model switch inside this path the loop simply retries:
// the callable opens its session against whatever model is then current.
func (o *Orchestrator) EstablishSession(ctx context.Context) error {
	o.session = nil
	_, err := o.invoke(ctx, "establish", func(ctx context.Context) (string, error) {
		model := o.pool.Current()
		o.logger.Info("initializing chat session",
			zap.String("model", model.Name),
			zap.Int("max_calls_per_minute", model.MaxCallsPerMinute),
			zap.Int("max_calls_per_day", model.MaxCallsPerDay))

		session, err := o.transport.NewSession(ctx, model.Name)
		if err != nil {
			return "", fmt.Errorf("chat initialization failed: %w", err)
		}
		reply, err := session.Send(ctx, o.priming)
		if err != nil {
			return "", fmt.Errorf("chat initialization failed: %w", err)
		}
		o.session = session
		return reply, nil
	}, false)
	return err
}

// invoke runs the state machine around one logical call. reprime controls
// whether a model switch re-establishes the session before retrying; the
// establishment call itself passes false, since its callable opens a fresh
// session on every attempt anyway.
func (o *Orchestrator) invoke(ctx context.Context, op string, call func(context.Context) (string, error), reprime bool) (string, error) {
	for attempt := 1; ; attempt++ {
		if attempt > o.cfg.MaxAttempts {
			return "", fmt.Errorf("%s: %w", op, ErrAttemptsExhausted)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		status, wait := o.limiter.Check(o.clock.Now())
		switch status {
		case RateDayLimit:
			o.logger.Info("day quota reached, switching model",
				zap.String("op", op),
				zap.String("model", o.pool.Current().Name))
			if err := o.failover(ctx, reprime); err != nil {
				return "", err
			}
			continue
		case RateMinuteLimit:
			o.logger.Info("minute quota reached, waiting",
				zap.String("op", op),
				zap.String("model", o.pool.Current().Name),
				zap.Duration("wait", wait))
			if err := o.clock.Sleep(ctx, wait); err != nil {
				return "", err
			}
			o.limiter.ResetMinuteWindow(o.clock.Now())
			continue
		}

		o.limiter.RecordAttempt()
		reply, err := call(ctx)
		if err == nil {
			// Ordering: failure count first, success timestamp second.
			o.pool.RecordSuccess()
			o.limiter.RecordSuccess(o.clock.Now())
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		o.pool.RecordFailure()
		if o.pool.ShouldAdvance(o.cfg.RetryMax) {
			o.logger.Warn("retry budget exhausted, switching model",
				zap.String("op", op),
				zap.String("model", o.pool.Current().Name),
				zap.Int("consecutive_failures", o.pool.ConsecutiveFailures()),
				zap.Error(err))
			if err := o.failover(ctx, reprime); err != nil {
				return "", err
			}
			continue
		}

		o.logger.Warn("call failed, retrying after delay",
			zap.String("op", op),
			zap.String("model", o.pool.Current().Name),
			zap.Int("consecutive_failures", o.pool.ConsecutiveFailures()),
			zap.Duration("delay", o.cfg.RetryDelay),
			zap.Error(err))
		if err := o.clock.Sleep(ctx, o.cfg.RetryDelay); err != nil {
			return "", err
		}
	}
}

// failover advances the pool, swaps rate state to the new model, drops the
// stale session and, when asked, re-establishes it with the original
// content. An analysis call issued against a stale session would silently
// analyze the wrong conversational context, so the session is invalidated
// before anything else can use it.
func (o *Orchestrator) failover(ctx context.Context, reprime bool) error {
	next, err := o.pool.Advance()
	if err != nil {
		return err
	}
	o.logger.Info("switched model", zap.String("model", next.Name))

	if o.ledger != nil {
		o.limiter.AdoptState(next, o.ledger.StateFor(next.Name))
	} else {
		o.limiter.ResetForModel(next, o.clock.Now())
	}

	o.session = nil
	if reprime {
		return o.EstablishSession(ctx)
	}
	return nil
}
