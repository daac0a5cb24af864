package service

import (
	"context"
	"fmt"

	"videocrawl/internal/extractor"
	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
	"videocrawl/internal/storage"
	"videocrawl/internal/store"
	"videocrawl/pkg/logger"

	"go.uber.org/zap"
)

// ProgressFactory returns the listener for one download
type ProgressFactory func(title string) extractor.Listener

// Summary counts the outcome of a download run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// DownloadService fetches media for crawled records
type DownloadService struct {
	cfg            *model.DownloaderConfig
	storageManager *storage.Manager
	library        extractor.Extractor
	cli            extractor.Extractor
	progress       ProgressFactory
	log            *zap.Logger
}

// NewDownloadService creates a new download service. Either extractor may be nil.
func NewDownloadService(cfg *model.DownloaderConfig, sm *storage.Manager, library, cli extractor.Extractor, log *zap.Logger) *DownloadService {
	return &DownloadService{
		cfg:            cfg,
		storageManager: sm,
		library:        library,
		cli:            cli,
		log:            logger.OrNop(log),
	}
}

// SetProgress installs the listener factory used for each download
func (s *DownloadService) SetProgress(f ProgressFactory) {
	s.progress = f
}

// Acquire downloads the media for rec and writes its sidecar. It reports
// success when the media file already exists. On success rec gains a
// downloaded_format entry.
func (s *DownloadService) Acquire(ctx context.Context, rec *model.Record) bool {
	if rec == nil || rec.VideoID == "" {
		s.log.Error("Cannot download", zap.Error(extractor.ErrMissingVideoID))
		return false
	}

	if err := s.storageManager.EnsureDir(s.storageManager.ChannelDir(rec)); err != nil {
		s.log.Error("Failed to create channel directory", zap.String("video_id", rec.VideoID), zap.Error(err))
		return false
	}

	mediaPath := s.storageManager.MediaPath(rec, s.cfg.FileFormat)
	if s.storageManager.Exists(mediaPath) {
		s.log.Info("Video already downloaded", zap.String("path", mediaPath))
		return true
	}

	ex, err := extractor.Choose(ctx, s.cfg.UseLibrary, s.library, s.cli)
	if err != nil {
		s.log.Error("Cannot download", zap.String("video_id", rec.VideoID), zap.Error(err))
		return false
	}

	req := extractor.Request{
		URL:      scraper.WatchURL(rec.VideoID),
		Selector: extractor.FormatSelector(s.cfg.Resolution, s.cfg.FileFormat),
		Preference: extractor.Preference{
			Resolution: s.cfg.Resolution,
			Container:  s.cfg.FileFormat,
		},
		OutputPath: mediaPath,
		Progress:   s.listener(rec),
	}
	s.log.Info("Downloading",
		zap.String("video_id", rec.VideoID),
		zap.String("extractor", ex.Name()),
		zap.String("format", req.Selector))

	df, err := ex.Extract(ctx, req)
	if err != nil {
		s.log.Error("Failed to download video", zap.String("video_id", rec.VideoID), zap.Error(err))
		return false
	}

	rec.DownloadedFormat = df
	sidecar := s.storageManager.SidecarPath(rec)
	if err := store.WriteSidecar(sidecar, rec); err != nil {
		s.log.Error("Failed to write metadata file", zap.String("path", sidecar), zap.Error(err))
		return false
	}

	s.log.Info("Successfully downloaded",
		zap.String("title", rec.Title),
		zap.String("resolution", df.Resolution),
		zap.String("path", mediaPath))
	return true
}

func (s *DownloadService) listener(rec *model.Record) extractor.Listener {
	if s.progress == nil {
		return extractor.NopListener{}
	}
	title := rec.Title
	if title == "" {
		title = rec.VideoID
	}
	return s.progress(title)
}

// Run acquires records in order, stopping after the configured limit.
func (s *DownloadService) Run(ctx context.Context, records []model.Record) Summary {
	if s.cfg.Limit > 0 && len(records) > s.cfg.Limit {
		records = records[:s.cfg.Limit]
		s.log.Info("Limited downloads", zap.Int("limit", s.cfg.Limit))
	}

	summary := Summary{Total: len(records)}
	for i := range records {
		if ctx.Err() != nil {
			summary.Failed += len(records) - i
			break
		}
		s.log.Info("Processing video",
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(records))),
			zap.String("video_id", records[i].VideoID))
		if s.Acquire(ctx, &records[i]) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	s.log.Info("Download complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("total", summary.Total))
	return summary
}

// RunFile loads a results file and downloads its records. An unreadable or
// empty file is an error, as is having no extraction tool at all.
func (s *DownloadService) RunFile(ctx context.Context, path string) (Summary, error) {
	if _, err := extractor.Choose(ctx, s.cfg.UseLibrary, s.library, s.cli); err != nil {
		return Summary{}, err
	}

	records, err := store.LoadNonEmpty(path)
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("Loaded videos", zap.Int("count", len(records)), zap.String("file", path))

	return s.Run(ctx, records), nil
}
