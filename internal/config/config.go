// Package config provides configuration management for the wage dashboard.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"wagedash/internal/engine"
	"wagedash/internal/views"
)

// EnvPrefix prefixes every environment override, e.g. WAGEDASH_SERVER_ADDRESS.
const EnvPrefix = "WAGEDASH"

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Views    views.Settings `yaml:"views" ignored:"true"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	AllowOrigins    []string      `yaml:"allow_origins" split_words:"true"`
	RateLimit       float64       `yaml:"rate_limit" split_words:"true" validate:"gte=0"` // requests per second per client, 0 disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gte=0"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=auto json text"`
}

// DatasetConfig locates one input file.
type DatasetConfig struct {
	Path     string            `yaml:"path" validate:"required"`
	Encoding string            `yaml:"encoding"`
	Sheet    string            `yaml:"sheet"`
	Types    map[string]string `yaml:"types" ignored:"true"`
	Rename   map[string]string `yaml:"rename" ignored:"true"`
}

// DatasetsConfig lists the four inputs.
type DatasetsConfig struct {
	National DatasetConfig `yaml:"national"`
	Regional DatasetConfig `yaml:"regional"`
	Industry DatasetConfig `yaml:"industry"`
	Geo      DatasetConfig `yaml:"geo"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			AllowOrigins:    []string{"*"},
			RateLimit:       20,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "auto"},
		Datasets: DatasetsConfig{
			National: DatasetConfig{Path: "csv_data/雇用_医療福祉_一人当たり賃金_全国_全産業.csv", Encoding: "shift_jis"},
			Industry: DatasetConfig{Path: "csv_data/雇用_医療福祉_一人当たり賃金_全国_大分類.csv", Encoding: "shift_jis"},
			Regional: DatasetConfig{Path: "csv_data/雇用_医療福祉_一人当たり賃金_都道府県_全産業.csv", Encoding: "shift_jis"},
			Geo:      DatasetConfig{Path: "pref_lat_lon.csv"},
		},
		Views: views.DefaultSettings(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then WAGEDASH_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the dataset type hints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for name, ds := range c.datasets() {
		for col, typ := range ds.Types {
			if _, err := engine.ParseKind(typ); err != nil {
				return fmt.Errorf("%w: datasets.%s.types.%s: %w", ErrInvalidConfig, name, col, err)
			}
		}
	}
	return nil
}

func (c *Config) datasets() map[views.Dataset]DatasetConfig {
	return map[views.Dataset]DatasetConfig{
		views.DatasetNational: c.Datasets.National,
		views.DatasetRegional: c.Datasets.Regional,
		views.DatasetIndustry: c.Datasets.Industry,
		views.DatasetGeo:      c.Datasets.Geo,
	}
}

// Sources converts the dataset settings into loader sources. Columns the
// views read as numbers are hinted so malformed cells load as nulls.
func (c *Config) Sources() []engine.Source {
	cols := c.Views.Columns
	hints := map[string]engine.Kind{
		cols.Period: engine.KindInt,
		cols.Lon:    engine.KindFloat,
		cols.Lat:    engine.KindFloat,
	}
	for _, m := range c.Views.Metrics {
		hints[m] = engine.KindFloat
	}

	all := c.datasets()
	sources := make([]engine.Source, 0, len(all))
	for _, name := range []views.Dataset{views.DatasetNational, views.DatasetRegional, views.DatasetIndustry, views.DatasetGeo} {
		ds := all[name]
		types := make(map[string]engine.Kind, len(hints)+len(ds.Types))
		for col, k := range hints {
			types[col] = k
		}
		for col, typ := range ds.Types {
			// validated in Validate
			k, _ := engine.ParseKind(typ)
			types[col] = k
		}
		sources = append(sources, engine.Source{
			Name:     string(name),
			Path:     ds.Path,
			Encoding: ds.Encoding,
			Sheet:    ds.Sheet,
			Types:    types,
			Rename:   ds.Rename,
		})
	}
	return sources
}
