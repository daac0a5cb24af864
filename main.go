package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"videocrawl/config"
	"videocrawl/internal/client"
	"videocrawl/internal/extractor"
	"videocrawl/internal/handler"
	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
	"videocrawl/internal/service"
	"videocrawl/internal/storage"
	"videocrawl/internal/store"
	"videocrawl/pkg/logger"
	"videocrawl/pkg/progress"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const usage = `usage: videocrawl [crawl|download|serve] [flags]

  crawl     search and save video metadata (default)
  download  fetch media for a saved results file
  serve     run the HTTP API
`

func main() {
	// Load configuration
	cfg := config.Load()

	mode := "crawl"
	args := os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		mode, args = args[0], args[1:]
	}

	if err := parseFlags(mode, args, cfg); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "crawl":
		err = runCrawl(ctx, cfg, log)
	case "download":
		err = runDownload(ctx, cfg, log)
	case "serve":
		err = runServe(ctx, cfg, log)
	}
	if err != nil {
		log.Error("Run failed", zap.String("mode", mode), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// parseFlags lets command line flags override the environment configuration
func parseFlags(mode string, args []string, cfg *model.Config) error {
	fs := flag.NewFlagSet(mode, flag.ContinueOnError)
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "debug, info, warn or error")

	switch mode {
	case "crawl", "serve":
		fs.StringVar(&cfg.Crawler.SearchQuery, "query", cfg.Crawler.SearchQuery, "search query")
		fs.IntVar(&cfg.Crawler.MaxVideos, "max", cfg.Crawler.MaxVideos, "maximum number of videos")
		fs.StringVar(&cfg.Crawler.OutputDir, "out", cfg.Crawler.OutputDir, "directory for the results file")
		fs.StringVar(&cfg.YouTube.APIKey, "api-key", cfg.YouTube.APIKey, "search through the Data API with this key")
		if mode == "serve" {
			fs.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "listen host")
			fs.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "listen port")
		}
	case "download":
		d := &cfg.Downloader
		fs.StringVar(&d.JSONFile, "json", d.JSONFile, "results file to download from")
		fs.StringVar(&d.OutputDir, "dir", d.OutputDir, "output directory")
		fs.StringVar(&d.Resolution, "resolution", d.Resolution, "best, worst or a maximum height such as 720")
		fs.StringVar(&d.FileFormat, "format", d.FileFormat, "target container")
		fs.IntVar(&d.Limit, "limit", d.Limit, "download at most this many videos (0 = all)")
		fs.BoolVar(&d.UseLibrary, "library", d.UseLibrary, "prefer the embedded extraction library over yt-dlp")
		fs.StringVar(&d.YtDlpPath, "ytdlp", d.YtDlpPath, "path to the yt-dlp binary")
		fs.BoolVar(&d.ShowProgress, "progress", d.ShowProgress, "draw a progress bar")
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if mode == "download" && fs.NArg() > 0 {
		cfg.Downloader.JSONFile = fs.Arg(0)
	}
	return nil
}

func newCrawlService(ctx context.Context, cfg *model.Config, log *zap.Logger) (*service.CrawlService, *scraper.DetailFetcher, error) {
	httpClient, err := client.NewHTTPClient(&cfg.HTTP)
	if err != nil {
		return nil, nil, err
	}

	var searcher scraper.Searcher = scraper.NewPageSearcher(httpClient, log)
	if cfg.YouTube.APIKey != "" {
		searcher, err = scraper.NewAPISearcher(ctx, cfg.YouTube.APIKey, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Data API search")
	}

	details := scraper.NewDetailFetcher(httpClient, log)
	return service.NewCrawlService(searcher, details, cfg.Crawler.OutputDir, log), details, nil
}

func runCrawl(ctx context.Context, cfg *model.Config, log *zap.Logger) error {
	log.Info("Starting crawler",
		zap.String("query", cfg.Crawler.SearchQuery),
		zap.Int("max_videos", cfg.Crawler.MaxVideos))

	crawlService, _, err := newCrawlService(ctx, cfg, log)
	if err != nil {
		return err
	}

	records, path, err := crawlService.Run(ctx, cfg.Crawler.SearchQuery, cfg.Crawler.MaxVideos)
	if errors.Is(err, service.ErrNoResults) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("Crawl finished", zap.Int("videos", len(records)), zap.String("file", path))
	return nil
}

func runDownload(ctx context.Context, cfg *model.Config, log *zap.Logger) error {
	d := &cfg.Downloader
	if d.JSONFile == "" {
		d.JSONFile = filepath.Join(cfg.Crawler.OutputDir, store.FileName(cfg.Crawler.SearchQuery))
	}
	log.Info("Starting downloader",
		zap.String("json_file", d.JSONFile),
		zap.String("output_dir", d.OutputDir),
		zap.String("resolution", d.Resolution),
		zap.String("format", d.FileFormat),
		zap.Int("limit", d.Limit),
		zap.Bool("use_library", d.UseLibrary))

	storageManager := storage.NewManager(d.OutputDir)
	if err := storageManager.EnsureDir(storageManager.Root()); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	downloadService := service.NewDownloadService(d,
		storageManager,
		extractor.NewLibraryExtractor(log),
		extractor.NewCLIExtractor(d.YtDlpPath, log),
		log)
	if d.ShowProgress {
		downloadService.SetProgress(func(title string) extractor.Listener {
			return progress.New(os.Stderr, title)
		})
	}

	summary, err := downloadService.RunFile(ctx, d.JSONFile)
	if err != nil {
		return err
	}
	log.Info("Downloads finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("total", summary.Total),
		zap.String("output_dir", d.OutputDir))
	return nil
}

func runServe(ctx context.Context, cfg *model.Config, log *zap.Logger) error {
	log.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	crawlService, details, err := newCrawlService(ctx, cfg, log)
	if err != nil {
		return err
	}
	videoService := service.NewVideoService(details, log)

	var rateLimitService *service.RateLimitService
	if cfg.RateLimit.Enabled {
		rateLimitService = service.NewRateLimitService(&cfg.RateLimit, log)
		defer rateLimitService.Stop()
		log.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute))
	}

	gin.SetMode(gin.ReleaseMode)
	videoHandler := handler.NewVideoHandler(videoService, crawlService, cfg, log)
	router := handler.NewRouter(videoHandler, rateLimitService, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}
