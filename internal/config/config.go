package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	AutoTrader AutoTraderConfig `mapstructure:"autotrader"`
	Search     SearchConfig     `mapstructure:"search"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// AutoTraderConfig holds target site and HTTP client configuration
type AutoTraderConfig struct {
	BaseURL              string            `mapstructure:"base_url"`
	SearchPath           string            `mapstructure:"search_path"`
	ListingPrefix        string            `mapstructure:"listing_prefix"`
	SearchStart          int               `mapstructure:"search_start"`
	SearchBy             int               `mapstructure:"search_by"`
	Headers              map[string]string `mapstructure:"headers"`
	Timeout              int               `mapstructure:"timeout"`
	RetryCount           int               `mapstructure:"retry_count"`
	MaxRequestsPerSecond int               `mapstructure:"max_requests_per_second"`

	// Stop the whole search page batch on the first failed listing
	AbortPageOnError bool `mapstructure:"abort_page_on_error"`
}

// SearchConfig holds the fixed search query sent with every search page request
type SearchConfig struct {
	Sort             int    `mapstructure:"sort"`
	Proximity        int    `mapstructure:"proximity"`
	HighlightPrice   bool   `mapstructure:"highlight_price"`
	WithCurrentPrice bool   `mapstructure:"with_current_price"`
	Location         string `mapstructure:"location"`
	Status           string `mapstructure:"status"`
	InMarket         string `mapstructure:"in_market"`
}

// StorageConfig holds where listing directories are written
type StorageConfig struct {
	RootDir  string `mapstructure:"root_dir"`
	MetaFile string `mapstructure:"meta_file"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	Database     int    `mapstructure:"database"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	StreamMaxLen int64  `mapstructure:"stream_max_len"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from config.yaml in the working directory with environment variable overrides
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads configuration searching config.yaml in the given paths
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.AutoTrader.Headers = canonicalHeaders(config.AutoTrader.Headers)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values the crawler cannot run without
func (c *Config) Validate() error {
	if c.AutoTrader.BaseURL == "" {
		return fmt.Errorf("autotrader.base_url must not be empty")
	}
	if c.AutoTrader.ListingPrefix == "" {
		return fmt.Errorf("autotrader.listing_prefix must not be empty")
	}
	if c.AutoTrader.SearchBy <= 0 {
		return fmt.Errorf("autotrader.search_by must be positive, got %d", c.AutoTrader.SearchBy)
	}
	if c.AutoTrader.SearchStart < 0 {
		return fmt.Errorf("autotrader.search_start must not be negative, got %d", c.AutoTrader.SearchStart)
	}
	if c.Storage.RootDir == "" {
		return fmt.Errorf("storage.root_dir must not be empty")
	}
	return nil
}

// canonicalHeaders fixes header key casing, which viper lowercases for keys read from file
func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("autotrader.base_url", "https://www.autotrader.ca")
	v.SetDefault("autotrader.search_path", "/cars/")
	v.SetDefault("autotrader.listing_prefix", "/a/")
	v.SetDefault("autotrader.search_start", 0)
	v.SetDefault("autotrader.search_by", 100)
	v.SetDefault("autotrader.headers", map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-CA,en;q=0.5",
	})
	v.SetDefault("autotrader.timeout", 0)
	v.SetDefault("autotrader.retry_count", 0)
	v.SetDefault("autotrader.max_requests_per_second", 0)
	v.SetDefault("autotrader.abort_page_on_error", false)

	v.SetDefault("search.sort", 9)
	v.SetDefault("search.proximity", -1)
	v.SetDefault("search.highlight_price", true)
	v.SetDefault("search.with_current_price", true)
	v.SetDefault("search.location", "J5Y3L1")
	v.SetDefault("search.status", "New-Used")
	v.SetDefault("search.in_market", "advancedSearch")

	v.SetDefault("storage.root_dir", "data/raw/auto_trader/")
	v.SetDefault("storage.meta_file", "meta.json")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "autotrader:")
	v.SetDefault("redis.stream_max_len", 10000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
