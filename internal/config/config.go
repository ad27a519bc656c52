package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "BINTHERE"
	appDir    = "BinThere"
	fileName  = "config.yaml"
)

// Config represents the tool configuration
type Config struct {
	StateDir           string `mapstructure:"state_dir"`            // directory holding last_scan.json; empty = platform data dir
	LogLevel           string `mapstructure:"log_level"`            // debug, info, warn, error
	LogFile            string `mapstructure:"log_file"`             // log to this file instead of stderr
	DefaultPath        string `mapstructure:"default_path"`         // scan root when none is given
	ReportTop          int    `mapstructure:"report_top"`           // length of the largest-installers list
	CheckInstalled     bool   `mapstructure:"check_installed"`      // match files against installed programs
	InstalledNamesFile string `mapstructure:"installed_names_file"` // extra installed names, one per line
}

// DefaultFile is where Load looks when no explicit file is given.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load loads configuration from defaults, an optional YAML file and
// BINTHERE_* environment variables, in increasing priority. An explicit file
// must exist; the default file is optional.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("state_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")
	v.SetDefault("default_path", "")
	v.SetDefault("report_top", 5)
	v.SetDefault("check_installed", true)
	v.SetDefault("installed_names_file", "")

	path := file
	if path == "" {
		path = DefaultFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if file != "" || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			logrus.WithField("file", path).Debug("Loaded config")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the app cannot run with.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.ReportTop < 0 {
		return fmt.Errorf("report_top must not be negative, got %d", c.ReportTop)
	}
	return nil
}
