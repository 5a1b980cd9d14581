package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Spatial  SpatialConfig  `yaml:"spatial" mapstructure:"spatial"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Model    ModelConfig    `yaml:"model" mapstructure:"model"`
	Predict  PredictConfig  `yaml:"predict" mapstructure:"predict"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SpatialConfig configures the PostGIS spatial facts database.
type SpatialConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BoundaryConfig describes the monitored region's bounding box in WGS84 degrees.
type BoundaryConfig struct {
	Name   string  `yaml:"name" mapstructure:"name"`
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLon float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MaxLon float64 `yaml:"max_lon" mapstructure:"max_lon"`
}

// ModelConfig configures the trained risk model artifact.
type ModelConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PredictConfig configures prediction behavior.
type PredictConfig struct {
	AlertThreshold  float64 `yaml:"alert_threshold" mapstructure:"alert_threshold"`
	MaxExplanations int     `yaml:"max_explanations" mapstructure:"max_explanations"`
}

// StoreConfig configures the prediction history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the HTTP prediction server.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFETOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("spatial.max_conns", 10)
	v.SetDefault("spatial.min_conns", 2)
	v.SetDefault("spatial.timeout_secs", 10)
	v.SetDefault("boundary.name", "Assam")
	v.SetDefault("boundary.min_lat", 24.0)
	v.SetDefault("boundary.max_lat", 28.0)
	v.SetDefault("boundary.min_lon", 89.5)
	v.SetDefault("boundary.max_lon", 96.0)
	v.SetDefault("model.path", "models/tourist_risk_model.json")
	v.SetDefault("predict.alert_threshold", 0.7)
	v.SetDefault("predict.max_explanations", 5)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "data/predictions.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks configuration values that would otherwise fail deep inside
// the pipeline.
func Validate(cfg *Config) error {
	if cfg.Boundary.MinLat >= cfg.Boundary.MaxLat {
		return eris.New("config: boundary min_lat must be < max_lat")
	}
	if cfg.Boundary.MinLon >= cfg.Boundary.MaxLon {
		return eris.New("config: boundary min_lon must be < max_lon")
	}
	if cfg.Predict.AlertThreshold < 0 || cfg.Predict.AlertThreshold > 1 {
		return eris.New("config: predict alert_threshold must be in [0, 1]")
	}
	if cfg.Predict.MaxExplanations < 0 {
		return eris.New("config: predict max_explanations must be >= 0")
	}
	if cfg.Store.Driver != "postgres" && cfg.Store.Driver != "sqlite" {
		return eris.Errorf("config: unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
