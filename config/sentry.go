package config

// SentryConfig defines settings for Sentry error monitoring. An empty DSN
// disables reporting; planning runs then rely on the structured logs alone.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	AttachStacktrace bool    `json:"attach_stacktrace"`
}
