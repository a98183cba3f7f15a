// Package config loads the ledger's settings and the goals it serves.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/dunkbonds/goal"
	"github.com/rustyeddy/dunkbonds/ledger"
)

// Config is the complete ledger configuration.
type Config struct {
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Goals  []GoalConfig `json:"goals" yaml:"goals"`
}

// LedgerConfig controls the store and balance rules.
type LedgerConfig struct {
	DBPath         string `json:"db_path" yaml:"db_path"`
	Currency       string `json:"currency" yaml:"currency"`
	AllowOverdraft bool   `json:"allow_overdraft" yaml:"allow_overdraft"`
	BusyTimeout    string `json:"busy_timeout" yaml:"busy_timeout"` // e.g. "5s", "250ms"
	MaxRetries     int    `json:"max_retries" yaml:"max_retries"`
}

type LogConfig struct {
	Mode string `json:"mode" yaml:"mode"` // development, production or off
}

// GoalConfig describes a goal. FaceValue is in major units, e.g. "10.00".
type GoalConfig struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	FaceValue string `json:"face_value" yaml:"face_value"`
	Valid     bool   `json:"valid" yaml:"valid"`
}

// Timeout parses BusyTimeout. An empty value means zero.
func (l LedgerConfig) Timeout() (time.Duration, error) {
	if l.BusyTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(l.BusyTimeout)
}

// Goal converts the entry using the ledger currency.
func (g GoalConfig) Goal(currency string) (goal.Goal, error) {
	fv, err := ledger.ParseCash(g.FaceValue, currency)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("goal %s: face_value: %w", g.ID, err)
	}
	return goal.Goal{ID: g.ID, Title: g.Title, FaceValue: fv, Valid: g.Valid}, nil
}

// Registry builds the goal source from the configured goals.
func (c *Config) Registry() (*goal.Registry, error) {
	goals := make([]goal.Goal, 0, len(c.Goals))
	for _, gc := range c.Goals {
		g, err := gc.Goal(c.Ledger.Currency)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goal.NewRegistry(goals...)
}

// LoadFromFile loads configuration from a YAML or JSON file. Keys missing
// from the file keep their Default values, goals excepted.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	cfg.Goals = nil

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path is required")
	}
	if !ledger.KnownCurrency(c.Ledger.Currency) {
		return fmt.Errorf("ledger.currency %q is not a known currency", c.Ledger.Currency)
	}
	if c.Ledger.MaxRetries < 0 {
		return fmt.Errorf("ledger.max_retries must not be negative")
	}
	d, err := c.Ledger.Timeout()
	if err != nil {
		return fmt.Errorf("ledger.busy_timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("ledger.busy_timeout must not be negative")
	}
	switch c.Log.Mode {
	case "", "dev", "development", "prod", "production", "off", "none":
	default:
		return fmt.Errorf("log.mode %q is not one of development, production, off", c.Log.Mode)
	}

	seen := make(map[string]bool, len(c.Goals))
	for i, gc := range c.Goals {
		if gc.ID == "" {
			return fmt.Errorf("goals[%d].id is required", i)
		}
		if seen[gc.ID] {
			return fmt.Errorf("duplicate goal id %q", gc.ID)
		}
		seen[gc.ID] = true
		g, err := gc.Goal(c.Ledger.Currency)
		if err != nil {
			return err
		}
		if g.FaceValue <= 0 {
			return fmt.Errorf("goal %s: face_value must be positive", gc.ID)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults and one example
// goal.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			DBPath:         "./dunkbonds.db",
			Currency:       ledger.DefaultCurrency,
			AllowOverdraft: true,
			BusyTimeout:    "5s",
			MaxRetries:     5,
		},
		Log: LogConfig{Mode: "development"},
		Goals: []GoalConfig{
			{ID: "goal-1", Title: "Example goal", FaceValue: "10.00", Valid: true},
		},
	}
}
