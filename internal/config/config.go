// Package config defines the viper-backed settings shared by every
// tectonic CLI subcommand: data directory, default base, log level, and
// quiet mode.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is the resolved configuration for a CLI invocation.
type Settings struct {
	// DataDir is where generated containers, stage logs, and checkpoints
	// live.
	DataDir string
	// DefaultH, DefaultW, DefaultM seed the base when a subcommand is not
	// given explicit dimensions.
	DefaultH int
	DefaultW int
	DefaultM int
	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string
	// Quiet suppresses the spinner and other interactive-only output.
	Quiet bool
}

// defaults are applied before any config file or environment override.
func defaults() Settings {
	return Settings{
		DataDir:  "./tectonic-data",
		DefaultH: 5,
		DefaultW: 5,
		DefaultM: 5,
		LogLevel: "info",
		Quiet:    false,
	}
}

// Load builds viper's configuration from (in ascending priority) built-in
// defaults, a "tectonic.yaml" file located in cfgDir (if any), and
// TECTONIC_-prefixed environment variables, then decodes into Settings.
func Load(cfgDir string) (Settings, error) {
	d := defaults()

	v := viper.New()
	v.SetDefault("datadir", d.DataDir)
	v.SetDefault("defaulth", d.DefaultH)
	v.SetDefault("defaultw", d.DefaultW)
	v.SetDefault("defaultm", d.DefaultM)
	v.SetDefault("loglevel", d.LogLevel)
	v.SetDefault("quiet", d.Quiet)

	v.SetEnvPrefix("TECTONIC")
	v.AutomaticEnv()

	if cfgDir != "" {
		v.SetConfigName("tectonic")
		v.SetConfigType("yaml")
		v.AddConfigPath(cfgDir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Settings{}, fmt.Errorf("tectonic: read config: %w", err)
			}
		}
	}

	s := Settings{
		DataDir:  v.GetString("datadir"),
		DefaultH: v.GetInt("defaulth"),
		DefaultW: v.GetInt("defaultw"),
		DefaultM: v.GetInt("defaultm"),
		LogLevel: v.GetString("loglevel"),
		Quiet:    v.GetBool("quiet"),
	}
	return s, nil
}

// EnsureDataDir creates s.DataDir if it does not already exist.
func (s Settings) EnsureDataDir() error {
	return os.MkdirAll(s.DataDir, 0o755)
}

// ContainerPath joins a filename stem onto the data directory with the
// ".tect" extension.
func (s Settings) ContainerPath(stem string) string {
	return filepath.Join(s.DataDir, stem+".tect")
}

// CheckpointPath joins a filename stem onto the data directory with the
// ".prg" extension.
func (s Settings) CheckpointPath(stem string) string {
	return filepath.Join(s.DataDir, stem+".prg")
}
