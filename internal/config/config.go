// Package config reads the service configuration from a YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "config/application-local.yaml"

type Config struct {
	API   APIConfig   `yaml:"api"`
	Log   LogConfig   `yaml:"log"`
	Rates RatesConfig `yaml:"rates"`
	Cache CacheConfig `yaml:"cache"`
	Batch BatchConfig `yaml:"batch"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// RatesConfig names a directory with additional year tables. Embedded
// tables are always loaded; a file for the same year replaces them.
type RatesConfig struct {
	Dir string `yaml:"dir"`
}

type CacheConfig struct {
	RedisAddr  string        `yaml:"redis_addr"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

func Default() Config {
	return Config{
		API:   APIConfig{Port: 8080},
		Log:   LogConfig{Level: "info"},
		Cache: CacheConfig{TTL: time.Hour, MaxEntries: 10000},
		Batch: BatchConfig{Workers: 8},
	}
}

// Load applies, on top of the defaults, the YAML file at path (if it
// exists), the .env file in the working directory and the environment.
// An empty path falls back to CONFIG_PATH and then DefaultPath.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("RATES_DIR", &c.Rates.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	if err := num("PORT", &c.API.Port); err != nil {
		return err
	}
	return num("BATCH_WORKERS", &c.Batch.Workers)
}

func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
