// Package config loads the engine configuration from a yaml file with
// environment overrides. Everything has a working default, so a missing file
// is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/baseline/internal/reconcile"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the baseline engine.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	// Actor identifies who runs the commands; recorded on every log entry.
	Actor string `yaml:"actor"`
	// Role maps onto a capability set: pmo, editor or viewer.
	Role string `yaml:"role"`

	// VersionStep is the version increment, in tenths, for minor and major
	// change requests. VersionStepCritical applies to critical requests.
	VersionStep         int `yaml:"version_step"`
	VersionStepCritical int `yaml:"version_step_critical"`

	// EnvelopeTolerance is the fractional band within which the envelope
	// sum must reconcile with the total budget. MonthlyTolerance is the
	// absolute band, in currency units, for the monthly distribution.
	EnvelopeTolerance float64 `yaml:"envelope_tolerance"`
	MonthlyTolerance  int64   `yaml:"monthly_tolerance"`

	// BudgetWarningPercent and TeamWarningPercent are the drift thresholds
	// beyond which saves demand justification.
	BudgetWarningPercent float64 `yaml:"budget_warning_percent"`
	TeamWarningPercent   float64 `yaml:"team_warning_percent"`
}

// Tolerances maps the configured bands onto the reconcile package's bundle.
func (c Config) Tolerances() reconcile.Tolerances {
	return reconcile.Tolerances{
		EnvelopeFraction:     c.EnvelopeTolerance,
		MonthlyUnits:         c.MonthlyTolerance,
		BudgetWarningPercent: c.BudgetWarningPercent,
		TeamWarningPercent:   c.TeamWarningPercent,
	}
}

// Default returns the configuration used when no file and no overrides are
// present.
func Default() Config {
	tol := reconcile.Defaults()
	return Config{
		Actor:                "unknown",
		Role:                 "editor",
		VersionStep:          1,
		VersionStepCritical:  10,
		EnvelopeTolerance:    tol.EnvelopeFraction,
		MonthlyTolerance:     tol.MonthlyUnits,
		BudgetWarningPercent: tol.BudgetWarningPercent,
		TeamWarningPercent:   tol.TeamWarningPercent,
	}
}

// Load reads the config file (BASELINE_CONFIG, else ~/.baseline/config.yaml)
// and applies environment overrides on top. A missing file yields defaults.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("BASELINE_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".baseline", "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("BASELINE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BASELINE_ACTOR"); v != "" {
		cfg.Actor = v
	}
	if v := os.Getenv("BASELINE_ROLE"); v != "" {
		cfg.Role = v
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".baseline", "baseline.db")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Role {
	case "pmo", "editor", "viewer":
	default:
		return fmt.Errorf("unknown role %q (expected pmo, editor or viewer)", c.Role)
	}
	if c.VersionStep < 1 || c.VersionStepCritical < 1 {
		return fmt.Errorf("version steps must be positive")
	}
	if c.EnvelopeTolerance < 0 || c.MonthlyTolerance < 0 ||
		c.BudgetWarningPercent <= 0 || c.TeamWarningPercent <= 0 {
		return fmt.Errorf("tolerances and warning thresholds must be positive")
	}
	return nil
}
