package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the planner.
type Config struct {
	// DatabasePath is the SQLite file holding durable state.
	DatabasePath string
	// SummaryTime is an optional HH:MM at which the watch command logs
	// the daily summary. Empty disables the daily job.
	SummaryTime string
	// SummaryInterval is an optional periodic summary interval for the
	// watch command. Zero disables the interval job.
	SummaryInterval time.Duration
	// Timezone overrides the local timezone for "today" computations.
	Timezone string
}

// Load reads configuration from an optional taskplanner.yaml (current
// dir or the user config dir) and TASKPLANNER_* environment variables,
// with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("taskplanner")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "taskplanner"))
	}
	v.SetEnvPrefix("taskplanner")
	v.AutomaticEnv()

	v.SetDefault("database", defaultDatabasePath())
	v.SetDefault("summary_time", "")
	v.SetDefault("summary_interval_hours", 0)
	v.SetDefault("timezone", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		DatabasePath:    v.GetString("database"),
		SummaryTime:     v.GetString("summary_time"),
		SummaryInterval: time.Duration(v.GetInt("summary_interval_hours")) * time.Hour,
		Timezone:        v.GetString("timezone"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath()
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "taskplanner.db"
	}
	return filepath.Join(dir, "taskplanner", "taskplanner.db")
}
