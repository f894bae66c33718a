package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported persistence drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// ErrMissingDatabaseURI is returned when the mongo driver is selected without a connection string.
var ErrMissingDatabaseURI = errors.New("database uri is required (set MONGO_URI or database.uri)")

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Address returns the listen address for the configured port ("3000" -> ":3000").
func (s ServerConfig) Address() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from an optional .env file, an optional config.yaml
// and environment variables, in increasing order of precedence.
func LoadConfig(path string) (config Config, err error) {
	// .env only fills variables that are not already set in the process environment.
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.port -> SERVER_PORT, database.uri -> DATABASE_URI
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// The short names are what hosting platforms usually inject.
	if err = v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return config, err
	}
	if err = v.BindEnv("database.uri", "DATABASE_URI", "MONGO_URI"); err != nil {
		return config, err
	}

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.name", "exercise_tracker")
	v.SetDefault("log.level", "info")

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config file: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, config.Validate()
}

// Validate checks settings the server cannot start without.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if strings.TrimSpace(c.Database.URI) == "" {
			return ErrMissingDatabaseURI
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	return nil
}
