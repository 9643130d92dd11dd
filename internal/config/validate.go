package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url must not be empty")
	}
	if err := ValidateURL(cfg.Scrape.BaseURL); err != nil {
		return fmt.Errorf("scrape.base_url: %w", err)
	}
	if cfg.Scrape.FirstSeason < 2012 {
		return fmt.Errorf("scrape.first_season must be >= 2012, got %d", cfg.Scrape.FirstSeason)
	}
	if cfg.Scrape.LastSeason != 0 && cfg.Scrape.LastSeason < cfg.Scrape.FirstSeason {
		return fmt.Errorf("scrape.last_season %d precedes first_season %d", cfg.Scrape.LastSeason, cfg.Scrape.FirstSeason)
	}
	if cfg.Scrape.Concurrency < 1 {
		return fmt.Errorf("scrape.concurrency must be >= 1, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.Concurrency > 64 {
		return fmt.Errorf("scrape.concurrency must be <= 64, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.MaxRetries < 0 {
		return fmt.Errorf("scrape.max_retries must be >= 0, got %d", cfg.Scrape.MaxRetries)
	}
	if cfg.Scrape.PolitenessDelay < 0 {
		return fmt.Errorf("scrape.politeness_delay must be >= 0")
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	validStorageTypes := map[string]bool{
		"json": true, "mongo": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: json, mongo)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongo" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri must be set when storage.type is 'mongo'")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a scrape target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
