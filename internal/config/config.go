// Package config holds the run configuration for the consolidate CLI.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config describes one consolidation run: where the raw logs and lookup
// tables live, what to do with durations, and where the result goes.
type Config struct {
	// Logs is the raw log input, a CSV file or a directory of CSV files.
	Logs string `koanf:"logs" yaml:"logs"`

	// CourseNames is the id→course name lookup table.
	CourseNames string `koanf:"course_names" yaml:"course_names"`

	// CourseDates is the id→(startdate, enddate) lookup table. Optional;
	// when set, records outside their course's dates are dropped.
	CourseDates string `koanf:"course_dates" yaml:"course_dates"`

	// RulesDir holds CUE rule files overriding the built-in
	// classification and cleaning tables. Optional.
	RulesDir string `koanf:"rules_dir" yaml:"rules_dir"`

	// Output is the consolidated CSV path.
	Output string `koanf:"output" yaml:"output"`

	// Database is the SQLite path runs are persisted to. Optional; empty
	// disables persistence.
	Database string `koanf:"database" yaml:"database"`

	// PointInTime reconstructs roles as they were at each record's
	// timestamp instead of the course-end snapshot.
	PointInTime bool `koanf:"point_in_time" yaml:"point_in_time"`

	// RoleNames maps raw role labels to display names, overriding the
	// built-in map.
	RoleNames map[string]string `koanf:"role_names" yaml:"role_names"`

	// Cleaning selects which drop-rule passes run after consolidation.
	Cleaning CleaningConfig `koanf:"cleaning" yaml:"cleaning"`

	// Outliers configures duration outlier capping. Optional; an empty
	// scenario disables it.
	Outliers OutlierConfig `koanf:"outliers" yaml:"outliers"`
}

// CleaningConfig toggles the built-in drop-rule tables.
type CleaningConfig struct {
	Noise      bool `koanf:"noise" yaml:"noise"`
	Automatic  bool `koanf:"automatic" yaml:"automatic"`
	Dataset    bool `koanf:"dataset" yaml:"dataset"`
	Unresolved bool `koanf:"unresolved" yaml:"unresolved"`
}

// OutlierConfig is the output of an external outlier estimator. For the
// bounded scenarios (winsor, boot_t_statistic, boot_mean) Threshold and
// Substitute act as lower and upper clamp bounds; for every other scenario
// Threshold is a ceiling and Substitute replaces values above it.
type OutlierConfig struct {
	Scenario   string `koanf:"scenario" yaml:"scenario"`
	Threshold  int64  `koanf:"threshold" yaml:"threshold"`
	Substitute int64  `koanf:"substitute" yaml:"substitute"`
}

// DefaultConfig returns the defaults a config file overlays.
func DefaultConfig() *Config {
	return &Config{
		Output: "consolidated.csv",
		Cleaning: CleaningConfig{
			Noise:      true,
			Automatic:  true,
			Unresolved: true,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (XAPI_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables. A double underscore separates nested
	// keys: XAPI_OUTPUT -> output, XAPI_OUTLIERS__SCENARIO ->
	// outliers.scenario.
	if err := k.Load(env.Provider("XAPI_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "XAPI_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Logs == "" {
		return fmt.Errorf("logs is required")
	}
	if c.CourseNames == "" {
		return fmt.Errorf("course_names is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if c.Outliers.Scenario != "" {
		if c.Outliers.Threshold < 0 {
			return fmt.Errorf("outliers.threshold must be non-negative")
		}
		if c.Outliers.Substitute < 0 {
			return fmt.Errorf("outliers.substitute must be non-negative")
		}
	}
	return nil
}
