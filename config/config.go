package config

import (
	"os"
	"strconv"
	"strings"

	"videocrawl/internal/model"

	"github.com/joho/godotenv"
)

// DefaultUserAgent is the fixed desktop browser identity sent with every request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Crawler: model.CrawlerConfig{
			SearchQuery: getEnvStr("CRAWLER_QUERY", "a cat video"),
			MaxVideos:   getEnvInt("CRAWLER_MAX_VIDEOS", 5),
			OutputDir:   getEnvStr("CRAWLER_OUTPUT_DIR", "."),
		},
		Downloader: model.DownloaderConfig{
			JSONFile:     getEnvStr("DOWNLOAD_JSON_FILE", ""),
			OutputDir:    getEnvStr("DOWNLOAD_DIR", "downloads"),
			Resolution:   strings.ToLower(getEnvStr("DOWNLOAD_RESOLUTION", "best")),
			FileFormat:   getEnvStr("DOWNLOAD_FORMAT", "mp4"),
			Limit:        getEnvInt("DOWNLOAD_LIMIT", 0),
			UseLibrary:   getEnvBool("DOWNLOAD_USE_LIBRARY", true),
			YtDlpPath:    getEnvStr("YTDLP_PATH", "yt-dlp"),
			ShowProgress: getEnvBool("DOWNLOAD_SHOW_PROGRESS", true),
		},
		HTTP: model.HTTPConfig{
			UserAgent:      getEnvStr("HTTP_USER_AGENT", DefaultUserAgent),
			AcceptLanguage: getEnvStr("HTTP_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			Timeout:        getEnvInt("HTTP_TIMEOUT", 30),
			BrowserTLS:     getEnvBool("HTTP_BROWSER_TLS", true),
		},
		YouTube: model.YouTubeConfig{
			APIKey: getEnvStr("YOUTUBE_API_KEY", ""),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", ""),
			Encoding: getEnvStr("LOG_ENCODING", "console"),
		},
		Server: model.ServerConfig{
			Port:    getEnvInt("SERVER_PORT", 8080),
			Host:    getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout: getEnvInt("SERVER_TIMEOUT", 300),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATELIMIT_REQUESTS_PER_MINUTE", 30),
			BurstSize:         getEnvInt("RATELIMIT_BURST_SIZE", 5),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 1800),
		},
	}
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
