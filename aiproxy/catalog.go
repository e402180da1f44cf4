// Package aiproxy orchestrates LLM calls for content analysis.
//
// One Analyzer is constructed per content item. Every outbound call flows
// through a retry/failover state machine that enforces per-minute and
// per-day call quotas for the active model, retries transient failures,
// and fails over to the next model in the pool when quotas or the error
// budget are exhausted. A model switch always re-establishes the chat
// session with the original content before any further analysis call.

package aiproxy

import "fmt"

// Model is one named remote LLM backend with its own call quotas.
// Immutable once loaded.
type Model struct {
	Name              string
	MaxCallsPerMinute int
	MaxCallsPerDay    int
}

// Validate checks the model definition.
func (m Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if m.MaxCallsPerMinute <= 0 {
		return fmt.Errorf("model %s: max calls per minute must be positive", m.Name)
	}
	if m.MaxCallsPerDay <= 0 {
		return fmt.Errorf("model %s: max calls per day must be positive", m.Name)
	}
	return nil
}

// DefaultCatalog returns the ordered fallback list of Gemini models with
// their free-tier quotas. The first entry is tried first.
func DefaultCatalog() []Model {
	return []Model{
		{Name: "gemini-2.0-flash", MaxCallsPerMinute: 15, MaxCallsPerDay: 1500},
		{Name: "gemini-2.0-flash-lite", MaxCallsPerMinute: 30, MaxCallsPerDay: 1500},
		{Name: "gemini-2.0-flash-thinking-exp-01-21", MaxCallsPerMinute: 10, MaxCallsPerDay: 1500},
		{Name: "gemini-2.0-flash-exp", MaxCallsPerMinute: 10, MaxCallsPerDay: 1500},
		{Name: "gemini-1.5-flash", MaxCallsPerMinute: 15, MaxCallsPerDay: 1500},
		{Name: "gemini-1.5-flash-8b", MaxCallsPerMinute: 15, MaxCallsPerDay: 1500},
	}
}

// ValidateCatalog checks a catalog for emptiness, invalid entries and
// duplicate names.
func ValidateCatalog(catalog []Model) error {
	if len(catalog) == 0 {
		return fmt.Errorf("model catalog cannot be empty")
	}
	seen := make(map[string]bool, len(catalog))
	for _, m := range catalog {
		if err := m.Validate(); err != nil {
			return err
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate model in catalog: %s", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}
