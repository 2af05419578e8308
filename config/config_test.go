package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `planner:
  max_concurrent_fetches: 6
  query_timeout_seconds: 5
  max_retries: 2
  backoff_ms: 100
  scoring:
    cost_weight: 0.7
    pto_weight: 0.3
calendar:
  calendar_id: "primary"
  client_id: "cid"
  client_secret: "secret"
  refresh_token: "tok"
search:
  base_url: "https://offers.example.com"
  api_key: "key"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "tripsched"
  topic: "trips/reservations"
metrics:
  prometheus_enabled: true
  prometheus_port: 2112
  influx_enabled: true
  influx_url: "http://localhost:8086"
  influx_bucket: "trips"
plan_log:
  backend: "sqlite"
  path: "plans.db"
sentry:
  environment: "staging"
  attach_stacktrace: true
server:
  addr: ":8081"
  api_token: "secret-token"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"max_concurrent_fetches", cfg.Planner.MaxConcurrentFetches, 6},
		{"query_timeout_seconds", cfg.Planner.QueryTimeoutSeconds, 5},
		{"max_retries", cfg.Planner.MaxRetries, 2},
		{"cost_weight", cfg.Planner.Scoring.CostWeight, 0.7},
		{"calendar_id", cfg.Calendar.CalendarID, "primary"},
		{"refresh_token", cfg.Calendar.RefreshToken, "tok"},
		{"base_url", cfg.Search.BaseURL, "https://offers.example.com"},
		{"api_key", cfg.Search.APIKey, "key"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"topic", cfg.MQTT.Topic, "trips/reservations"},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, 2112},
		{"influx_url", cfg.Metrics.InfluxURL, "http://localhost:8086"},
		{"plan_log_backend", cfg.PlanLog.Backend, "sqlite"},
		{"plan_log_path", cfg.PlanLog.Path, "plans.db"},
		{"sentry_environment", cfg.Sentry.Environment, "staging"},
		{"sentry_stacktrace", cfg.Sentry.AttachStacktrace, true},
		{"server_addr", cfg.Server.Addr, ":8081"},
		{"api_token", cfg.Server.APIToken, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	// Unset planner fields pick up defaults.
	if cfg.Planner.CalendarConcurrency != 4 {
		t.Errorf("calendar_concurrency default: %d", cfg.Planner.CalendarConcurrency)
	}
	if cfg.Planner.FetchTimeoutSeconds != 120 {
		t.Errorf("fetch_timeout default: %d", cfg.Planner.FetchTimeoutSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"search": {"base_url": "https://offers.example.com"}, "plan_log": {"backend": "jsonl", "path": "plans.log"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TS_SEARCH__API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Search.APIKey != "env-key" {
		t.Errorf("env override not applied: %q", cfg.Search.APIKey)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsBadPlanLogBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "plan_log:\n  backend: \"oracle\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
