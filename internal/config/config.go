// Package config loads daemon configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the tradesim daemon needs at startup.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Sim      SimConfig      `mapstructure:"sim"`
}

// DatabaseConfig locates the SQLite world store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ServerConfig configures the HTTP/WebSocket API.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	AdminKey string `mapstructure:"admin_key"` // empty disables admin endpoints
}

// SimConfig tunes the simulation clock.
type SimConfig struct {
	Seed    int64   `mapstructure:"seed"`
	Speed   float64 `mapstructure:"speed" validate:"gte=0"`
	FrameMs int     `mapstructure:"frame_ms" validate:"min=10,max=1000"`
}

// Load reads config.yaml (if present), then environment variables with the
// TRADEWAY_ prefix, then fills defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("TRADEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", "data/world.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("sim.seed", 42)
	v.SetDefault("sim.speed", 1.0)
	v.SetDefault("sim.frame_ms", 100)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine: defaults plus env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
