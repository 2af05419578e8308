package config

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address of the plan-log API.
	Addr string `json:"addr"`
	// APIToken protects the API; requests must carry it as a bearer token.
	APIToken string `json:"api_token"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
