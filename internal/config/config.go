package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	WineSearcher WineSearcherConfig `mapstructure:"winesearcher"`
	Proxy        ProxyConfig        `mapstructure:"proxy"`
	Checkpoint   CheckpointConfig   `mapstructure:"checkpoint"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus exposition endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// WineSearcherConfig holds fetch and batching configuration for the
// price-aggregator site.
type WineSearcherConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`        // seconds, per request
	MaxRetries           int    `mapstructure:"max_retries"`    // total attempts per URL
	RetryWait            int    `mapstructure:"retry_wait"`     // seconds, backoff floor
	RetryMaxWait         int    `mapstructure:"retry_max_wait"` // seconds, backoff ceiling
	MaxConcurrent        int    `mapstructure:"max_concurrent"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	BatchSize            int    `mapstructure:"batch_size"`
	BatchDelay           int    `mapstructure:"batch_delay"` // seconds between batches
	Country              string `mapstructure:"country"`
	IncludeAuction       bool   `mapstructure:"include_auction"`
}

// ProxyConfig holds the rotating-proxy provider settings.
type ProxyConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ProviderURL string `mapstructure:"provider_url"`
	PoolSize    int    `mapstructure:"pool_size"`
}

// CheckpointConfig selects where run progress is persisted.
type CheckpointConfig struct {
	Store string `mapstructure:"store"` // "file" or "redis"
	Path  string `mapstructure:"path"`  // CSV path for the file store
	Key   string `mapstructure:"key"`   // run key for the redis store
}

// DatabaseConfig holds the persistence sink connection details.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details for the redis checkpoint store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Defaults plus env overrides are enough to run without a config.yaml.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("winesearcher.base_url", "https://www.wine-searcher.com")
	viper.SetDefault("winesearcher.timeout", 60)
	viper.SetDefault("winesearcher.max_retries", 3)
	viper.SetDefault("winesearcher.retry_wait", 2)
	viper.SetDefault("winesearcher.retry_max_wait", 10)
	viper.SetDefault("winesearcher.max_concurrent", 5)
	viper.SetDefault("winesearcher.max_requests_per_second", 2)
	viper.SetDefault("winesearcher.batch_size", 10)
	viper.SetDefault("winesearcher.batch_delay", 3)
	viper.SetDefault("winesearcher.country", "usa")
	viper.SetDefault("winesearcher.include_auction", false)

	viper.SetDefault("proxy.enabled", false)
	viper.SetDefault("proxy.provider_url", "")
	viper.SetDefault("proxy.pool_size", 5)

	viper.SetDefault("checkpoint.store", "file")
	viper.SetDefault("checkpoint.path", "output/wines.csv")
	viper.SetDefault("checkpoint.key", "default")

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "winesearcher")
	viper.SetDefault("database.user", "winesearcher_user")
	viper.SetDefault("database.password", "winesearcher_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)

	viper.SetDefault("metrics.addr", "")
}
