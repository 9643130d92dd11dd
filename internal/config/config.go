package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for herdstats.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ScrapeConfig controls which pages get scraped and how aggressively.
type ScrapeConfig struct {
	BaseURL         string        `mapstructure:"base_url"         yaml:"base_url"`
	FirstSeason     int           `mapstructure:"first_season"     yaml:"first_season"`
	LastSeason      int           `mapstructure:"last_season"      yaml:"last_season"`
	Concurrency     int           `mapstructure:"concurrency"      yaml:"concurrency"`
	MaxRetries      int           `mapstructure:"max_retries"      yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"      yaml:"retry_delay"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	SkipContests    bool          `mapstructure:"skip_contests"    yaml:"skip_contests"`
	SkipFinalists   bool          `mapstructure:"skip_finalists"   yaml:"skip_finalists"`
	SkipHistory     bool          `mapstructure:"skip_history"     yaml:"skip_history"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// StorageConfig controls where the scraped dataset is written.
type StorageConfig struct {
	Type          string `mapstructure:"type"           yaml:"type"`
	OutputPath    string `mapstructure:"output_path"    yaml:"output_path"`
	MongoURI      string `mapstructure:"mongo_uri"      yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
	Pretty        bool   `mapstructure:"pretty"         yaml:"pretty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			BaseURL:         "https://usaco.org",
			FirstSeason:     2012,
			LastSeason:      0, // 0 means current season
			Concurrency:     4,
			MaxRetries:      3,
			RetryDelay:      2 * time.Second,
			PolitenessDelay: 500 * time.Millisecond,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       "herdstats/" + Version,
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Storage: StorageConfig{
			Type:       "json",
			OutputPath: "standings.json",
			Pretty:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
