// Package config loads dockyard's layered configuration: a YAML tunables
// file, overridden by environment variables, overridden by explicit CLI
// flags set by the caller. This mirrors the layered env/file/flag
// configuration idiom used across the retrieved infra repos.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Simulation holds every tunable spec.md leaves as "configurable".
type Simulation struct {
	BeltSlots    int `yaml:"belt_slots"`
	UserRows     int `yaml:"user_rows"`
	Trucks       int `yaml:"trucks"`
	Workers      int `yaml:"workers"`
	MaxWorkers   int `yaml:"max_workers"`
	AuditHistory int `yaml:"audit_history"`
}

// Logging holds spec section 6's three env-driven logging knobs.
type Logging struct {
	ToConsole bool
	ToFile    bool
	Level     logging.LogLevel
}

// Config is the fully resolved configuration for a role process.
type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Logging    Logging    `yaml:"-"`
}

// Default returns the spec-default configuration.
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			BeltSlots:    constants.DefaultBeltSlots,
			UserRows:     constants.DefaultUserRows,
			Trucks:       constants.DefaultTrucks,
			Workers:      constants.DefaultWorkers,
			MaxWorkers:   constants.DefaultMaxWorkers,
			AuditHistory: constants.DefaultAuditHistory,
		},
		Logging: Logging{
			ToConsole: true,
			ToFile:    false,
			Level:     logging.LevelInfo,
		},
	}
}

// Load resolves configuration in the documented precedence: YAML file (if
// present) < environment variables < defaults for anything unset. The YAML
// path is DOCKYARD_CONFIG, default "dockyard.yaml"; a missing file is not an
// error, it simply means "use defaults and env". Belt slots or user rows
// above uapi.MaxBeltSlots/MaxUserRows are rejected with an error.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("DOCKYARD_CONFIG")
	if path == "" {
		path = "dockyard.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvLogging(&cfg.Logging)
	applyZeroDefaults(&cfg.Simulation)

	if cfg.Simulation.BeltSlots > uapi.MaxBeltSlots || cfg.Simulation.UserRows > uapi.MaxUserRows {
		return nil, fmt.Errorf("config: belt_slots %d / user_rows %d exceed the shared-memory limits %d / %d",
			cfg.Simulation.BeltSlots, cfg.Simulation.UserRows, uapi.MaxBeltSlots, uapi.MaxUserRows)
	}

	return cfg, nil
}

// applyEnvLogging reads spec section 6's three logging env vars. Booleans
// accept "true"/"false" case-insensitively, as spec.md specifies.
func applyEnvLogging(l *Logging) {
	if v, ok := os.LookupEnv("LOG_TO_CONSOLE"); ok {
		l.ToConsole = parseBool(v, l.ToConsole)
	}
	if v, ok := os.LookupEnv("LOG_TO_FILE"); ok {
		l.ToFile = parseBool(v, l.ToFile)
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		l.Level = logging.ParseLevel(v)
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return fallback
	}
	return b
}

// applyZeroDefaults guards against a YAML file that sets some but not all
// simulation fields, leaving the rest at their Go zero value.
func applyZeroDefaults(s *Simulation) {
	d := Default().Simulation
	if s.BeltSlots <= 0 {
		s.BeltSlots = d.BeltSlots
	}
	if s.UserRows <= 0 {
		s.UserRows = d.UserRows
	}
	if s.Trucks <= 0 {
		s.Trucks = d.Trucks
	}
	if s.Workers <= 0 {
		s.Workers = d.Workers
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = d.MaxWorkers
	}
	if s.AuditHistory <= 0 {
		s.AuditHistory = d.AuditHistory
	}
}
