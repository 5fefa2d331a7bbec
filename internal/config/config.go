// Package config loads the inputecho configuration file using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Display DisplayConfig `mapstructure:"display"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Serve   ServeConfig   `mapstructure:"serve"`

	// Sinks lists the sinks used by replay (see sink.Names).
	Sinks []string `mapstructure:"sinks"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"` // Empty keeps LOG_LEVEL
	Timestamps bool   `mapstructure:"timestamps"`
}

// StorageConfig controls the event history database.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DisplayConfig controls the interactive tester.
type DisplayConfig struct {
	RectWidth      int `mapstructure:"rect_width"`
	RectHeight     int `mapstructure:"rect_height"`
	LogLines       int `mapstructure:"log_lines"`
	ReleaseDelayMS int `mapstructure:"release_delay_ms"`
	StartX         int `mapstructure:"start_x"`
	StartY         int `mapstructure:"start_y"`
}

// ReplayConfig controls script and capture playback.
type ReplayConfig struct {
	Realtime bool    `mapstructure:"realtime"`
	Speed    float64 `mapstructure:"speed"`
}

// ServeConfig contains SSH server settings.
type ServeConfig struct {
	Address            string `mapstructure:"address"`
	HostKeyPath        string `mapstructure:"host_key_path"`
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes"`
}

var (
	// DefaultConfig provides the built-in defaults.
	DefaultConfig = Config{
		Logging: LoggingConfig{
			Level:      "",
			Timestamps: false,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "~/.inputecho/events.db",
		},
		Display: DisplayConfig{
			RectWidth:      16,
			RectHeight:     5,
			LogLines:       200,
			ReleaseDelayMS: 600,
			StartX:         4,
			StartY:         2,
		},
		Replay: ReplayConfig{
			Realtime: false,
			Speed:    1.0,
		},
		Serve: ServeConfig{
			Address:            ":23235",
			HostKeyPath:        "",
			IdleTimeoutMinutes: 30,
		},
		Sinks: []string{"console"},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath makes Init read only the given file.
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init reads the configuration. A missing file is not an error.
func Init() error {
	viper.SetConfigName("inputecho")
	viper.SetConfigType("yaml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".inputecho"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("logging.level", DefaultConfig.Logging.Level)
	viper.SetDefault("logging.timestamps", DefaultConfig.Logging.Timestamps)

	viper.SetDefault("storage.enabled", DefaultConfig.Storage.Enabled)
	viper.SetDefault("storage.path", DefaultConfig.Storage.Path)

	viper.SetDefault("display.rect_width", DefaultConfig.Display.RectWidth)
	viper.SetDefault("display.rect_height", DefaultConfig.Display.RectHeight)
	viper.SetDefault("display.log_lines", DefaultConfig.Display.LogLines)
	viper.SetDefault("display.release_delay_ms", DefaultConfig.Display.ReleaseDelayMS)
	viper.SetDefault("display.start_x", DefaultConfig.Display.StartX)
	viper.SetDefault("display.start_y", DefaultConfig.Display.StartY)

	viper.SetDefault("replay.realtime", DefaultConfig.Replay.Realtime)
	viper.SetDefault("replay.speed", DefaultConfig.Replay.Speed)

	viper.SetDefault("serve.address", DefaultConfig.Serve.Address)
	viper.SetDefault("serve.host_key_path", DefaultConfig.Serve.HostKeyPath)
	viper.SetDefault("serve.idle_timeout_minutes", DefaultConfig.Serve.IdleTimeoutMinutes)

	viper.SetDefault("sinks", DefaultConfig.Sinks)

	viper.SetEnvPrefix("INPUTECHO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("config: unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	return nil
}

// Validate rejects values the tester cannot work with.
func (c *Config) Validate() error {
	if c.Replay.Speed <= 0 {
		return fmt.Errorf("config: replay.speed must be positive, got %v", c.Replay.Speed)
	}
	if c.Display.RectWidth < 1 || c.Display.RectHeight < 1 {
		return fmt.Errorf("config: display rectangle must be at least 1x1, got %dx%d",
			c.Display.RectWidth, c.Display.RectHeight)
	}
	if c.Display.ReleaseDelayMS < 1 {
		return fmt.Errorf("config: display.release_delay_ms must be positive, got %d", c.Display.ReleaseDelayMS)
	}
	return nil
}

// Get returns the current configuration, or the defaults before Init.
func Get() *Config {
	if cfg == nil {
		d := DefaultConfig
		return &d
	}
	return cfg
}

// ConfigFileUsed returns the file Init read, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
