package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Crawler    CrawlerConfig
	Downloader DownloaderConfig
	HTTP       HTTPConfig
	YouTube    YouTubeConfig
	Logging    LoggingConfig
	Server     ServerConfig
	RateLimit  RateLimitConfig
}

// CrawlerConfig holds search and detail crawl configuration
type CrawlerConfig struct {
	SearchQuery string
	MaxVideos   int
	OutputDir   string // directory the results file is written to
}

// DownloaderConfig holds media acquisition configuration
type DownloaderConfig struct {
	JSONFile     string
	OutputDir    string
	Resolution   string // "best", "worst", or a height such as "720"
	FileFormat   string // target container, e.g. "mp4"
	Limit        int    // 0 means no cap
	UseLibrary   bool   // embedded extraction library instead of the yt-dlp binary
	YtDlpPath    string
	ShowProgress bool
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        int // seconds
	BrowserTLS     bool
}

// YouTubeConfig holds optional Data API credentials
type YouTubeConfig struct {
	APIKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string // empty logs to stderr only
	Encoding string // "console" or "json"
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// RateLimitConfig holds per-IP request limiting for the API
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	CleanupInterval   int // seconds
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Crawler.MaxVideos < 0 {
		return errors.New("max videos must not be negative")
	}
	if c.Downloader.Limit < 0 {
		return errors.New("download limit must not be negative")
	}
	if strings.TrimSpace(c.Downloader.FileFormat) == "" {
		return errors.New("file format must not be empty")
	}
	return ValidateResolution(c.Downloader.Resolution)
}

// ValidateResolution accepts "best", "worst" or a positive height.
func ValidateResolution(res string) error {
	if res == "best" || res == "worst" {
		return nil
	}
	h, err := strconv.Atoi(res)
	if err != nil || h <= 0 {
		return fmt.Errorf("invalid resolution %q: want best, worst or a height", res)
	}
	return nil
}
