package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pverdier/tripsched/core/planner"
	"github.com/pverdier/tripsched/infra/googlecal"
	"github.com/pverdier/tripsched/infra/mqtt"
	"github.com/pverdier/tripsched/infra/tripsearch"
)

type Config struct {
	Planner  planner.Config    `json:"planner"`
	Calendar googlecal.Config  `json:"calendar"`
	Search   tripsearch.Config `json:"search"`
	MQTT     mqtt.Config       `json:"mqtt"`
	Metrics  MetricsConfig     `json:"metrics"`
	PlanLog  PlanLogConfig     `json:"plan_log"`
	Sentry   SentryConfig      `json:"sentry"`
	Server   ServerConfig      `json:"server"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ts_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Planner.SetDefaults()
	cfg.PlanLog.SetDefaults()
	cfg.Server.SetDefaults()
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.PlanLog.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
