package planner

import "fmt"

// Config defines planning-related settings.
type Config struct {
	// MaxConcurrentFetches bounds the number of simultaneous provider
	// queries in the fetch phase.
	MaxConcurrentFetches int `json:"max_concurrent_fetches"`
	// CalendarConcurrency bounds the per-window availability checks.
	CalendarConcurrency int `json:"calendar_concurrency"`
	// QueryTimeoutSeconds caps each individual provider query attempt.
	QueryTimeoutSeconds int `json:"query_timeout_seconds"`
	// FetchTimeoutSeconds caps the whole fetch phase; pending windows are
	// cancelled and excluded when it elapses.
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds"`
	// MaxRetries is the retry budget per query on transient failure.
	MaxRetries int `json:"max_retries"`
	// BackoffMS is the initial backoff, doubled on each retry.
	BackoffMS int `json:"backoff_ms"`

	Scoring ScoringConfig `json:"scoring"`
}

// ScoringConfig weights the two ranking terms. Weights are normalized at
// use, so only their ratio matters.
type ScoringConfig struct {
	CostWeight float64 `json:"cost_weight"`
	PTOWeight  float64 `json:"pto_weight"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = 8
	}
	if c.CalendarConcurrency <= 0 {
		c.CalendarConcurrency = 4
	}
	if c.QueryTimeoutSeconds <= 0 {
		c.QueryTimeoutSeconds = 10
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = 120
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 200
	}
	if c.Scoring.CostWeight == 0 && c.Scoring.PTOWeight == 0 {
		c.Scoring.CostWeight = 0.5
		c.Scoring.PTOWeight = 0.5
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Scoring.CostWeight < 0 || c.Scoring.PTOWeight < 0 {
		return fmt.Errorf("scoring weights cannot be negative")
	}
	if c.Scoring.CostWeight+c.Scoring.PTOWeight <= 0 {
		return fmt.Errorf("scoring weights must not both be zero")
	}
	return nil
}
