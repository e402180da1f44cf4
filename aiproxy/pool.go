package aiproxy

import "fmt"

// PoolManager owns the ordered fallback pool of models. The head of the
// pool is the current model. The pool shrinks monotonically: Advance pops
// the exhausted head and never re-adds it.
//
// PoolManager also tracks the consecutive-failure count for the current
// model. It is not safe for concurrent use; each Analyzer owns its own.
type PoolManager struct {
	models              []Model
	consecutiveFailures int
}

// NewPoolManager creates a pool from the given catalog. The catalog is
// copied so later mutation of the caller's slice has no effect.
func NewPoolManager(catalog []Model) (*PoolManager, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid model catalog: %w", err)
	}
	models := make([]Model, len(catalog))
	copy(models, catalog)
	return &PoolManager{models: models}, nil
}

// Current returns the head of the pool.
func (p *PoolManager) Current() Model {
	return p.models[0]
}

// Advance pops the current head and makes the next model current,
// resetting the consecutive-failure count for it. Returns
// ErrNoAvailableModel when there is no fallback left.
func (p *PoolManager) Advance() (Model, error) {
	if len(p.models) <= 1 {
		return Model{}, ErrNoAvailableModel
	}
	p.models = p.models[1:]
	p.consecutiveFailures = 0
	return p.models[0], nil
}

// RecordFailure increments the consecutive-failure count for the current
// model.
func (p *PoolManager) RecordFailure() {
	p.consecutiveFailures++
}

// RecordSuccess resets the consecutive-failure count to zero.
func (p *PoolManager) RecordSuccess() {
	p.consecutiveFailures = 0
}

// ShouldAdvance reports whether the consecutive-failure count has reached
// the given ceiling.
func (p *PoolManager) ShouldAdvance(maxRetries int) bool {
	return p.consecutiveFailures >= maxRetries
}

// ConsecutiveFailures returns the failure count for the current model.
func (p *PoolManager) ConsecutiveFailures() int {
	return p.consecutiveFailures
}

// Remaining returns the number of models left in the pool, current
// included.
func (p *PoolManager) Remaining() int {
	return len(p.models)
}
