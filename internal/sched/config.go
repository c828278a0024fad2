package sched

import (
	"os"
	"runtime"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Config mirrors config.yml
type Config struct {
	TickMode TickMode `yaml:"tick_mode"` // gcd (by default)
	Tick     int64    `yaml:"tick"`      // fixed tick, 0 = derive from tick_mode
	Strict   bool     `yaml:"strict"`    // fail on overlapping instances instead of superseding them
	LogLevel string   `yaml:"log_level"` // info (by default)
	JSONLog  bool     `yaml:"json_log"`
	TraceCSV string   `yaml:"trace_csv"` // per-event CSV trace, empty = off
	Workers  int      `yaml:"workers"`   // batch parallelism, NumCPU (by default)
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() Config {
	return Config{
		TickMode: TickGCD,
		LogLevel: "info",
		Workers:  runtime.NumCPU(),
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}

	cfg.clamp()
	return cfg, nil
}

// sanity clamps
func (c *Config) clamp() {
	if !c.TickMode.Valid() {
		c.TickMode = TickGCD
	}
	if c.Tick < 0 {
		c.Tick = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
