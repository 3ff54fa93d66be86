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

	"github.com/kilianp07/powersplit/core/factory"
	"github.com/kilianp07/powersplit/core/metrics"
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/simulation"
	"github.com/kilianp07/powersplit/infra/logger"
	"github.com/kilianp07/powersplit/infra/monitoring"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys are separated by a double underscore, for example
// PS_SIMULATION__PARALLELISM=4.
const EnvPrefix = "PS_"

type Config struct {
	Simulation simulation.Config       `json:"simulation"`
	Vehicle    model.Vehicle           `json:"vehicle"`
	History    HistoryConfig           `json:"history"`
	Trips      TripsConfig             `json:"trips"`
	Policies   []factory.ModuleConfig  `json:"policies"`
	Metrics    metrics.Config          `json:"metrics"`
	Logging    logger.Config           `json:"logging"`
	Export     ExportConfig            `json:"export"`
	Sentry     monitoring.SentryConfig `json:"sentry"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Simulation: simulation.DefaultConfig(),
		Vehicle:    model.DefaultVehicle(),
	}
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
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.History.SetDefaults()
	c.Logging.SetDefaults()
	if len(c.Policies) == 0 {
		c.Policies = []factory.ModuleConfig{{Type: "nocap"}, {Type: "omniscient", Conf: map[string]any{"lookahead": 60}}}
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	for i, p := range c.Policies {
		if p.Type == "" {
			return fmt.Errorf("policies[%d]: type is required", i)
		}
	}
	return nil
}
