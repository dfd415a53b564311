// Package config loads dashboard settings from configs/config.yml and
// GARDEN_PANEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GARDEN_PANEL"

// Config is the resolved process configuration.
type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Remote    RemoteConfig    `mapstructure:"remote"`
	Poll      PollConfig      `mapstructure:"poll"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Activity  ActivityConfig  `mapstructure:"activity"`
	Server    ServerConfig    `mapstructure:"server"`
}

// RemoteConfig points at the garden controller API.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	DiscardStaleFeeds bool          `mapstructure:"discard_stale_feeds"`
}

// TemplatesConfig.Dir overrides the embedded templates when set.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

type DashboardConfig struct {
	Title string `mapstructure:"title"`
}

// ActivityConfig.DSN selects the SQLite database; the default is in memory.
type ActivityConfig struct {
	Capacity int    `mapstructure:"capacity"`
	DSN      string `mapstructure:"dsn"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("remote.base_url", "http://localhost:8089")
	v.SetDefault("remote.timeout", 5*time.Second)
	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("poll.discard_stale_feeds", true)
	v.SetDefault("templates.dir", "")
	v.SetDefault("dashboard.title", "Garden zones")
	v.SetDefault("activity.capacity", 500)
	v.SetDefault("activity.dsn", "file:activity?mode=memory&cache=shared")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from each path in order, applies environment
// overrides and defaults. A missing file is fine; a malformed one is not.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Remote.BaseURL) == "":
		return errors.New("remote.base_url must be set")
	case c.Poll.Interval <= 0:
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	case c.Activity.Capacity <= 0:
		return fmt.Errorf("activity.capacity must be positive, got %d", c.Activity.Capacity)
	}
	return nil
}
