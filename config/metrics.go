package config

// MetricsConfig selects the observability sinks for planning events.
type MetricsConfig struct {
	// PrometheusEnabled exposes the /metrics endpoint on PrometheusPort.
	PrometheusEnabled bool `json:"prometheus_enabled"`
	PrometheusPort    int  `json:"prometheus_port"`

	// InfluxEnabled streams planning events to an InfluxDB bucket.
	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}
