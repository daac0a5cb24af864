package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
	"videocrawl/internal/store"
	"videocrawl/pkg/logger"

	"go.uber.org/zap"
)

// ErrNoResults means the search produced nothing to crawl
var ErrNoResults = errors.New("search returned no videos")

// DetailSource turns a video id into a record
type DetailSource interface {
	Fetch(ctx context.Context, videoID string) (*model.Record, error)
}

// CrawlService runs search followed by per-video detail extraction
type CrawlService struct {
	searcher  scraper.Searcher
	details   DetailSource
	outputDir string
	log       *zap.Logger
}

// NewCrawlService creates a new crawl service
func NewCrawlService(searcher scraper.Searcher, details DetailSource, outputDir string, log *zap.Logger) *CrawlService {
	return &CrawlService{searcher: searcher, details: details, outputDir: outputDir, log: logger.OrNop(log)}
}

// Search returns up to max identifiers for query
func (s *CrawlService) Search(ctx context.Context, query string, max int) ([]string, error) {
	return s.searcher.Search(ctx, query, max)
}

// Collect searches for query and fetches each result in order. Items whose
// page cannot be fetched are logged and dropped.
func (s *CrawlService) Collect(ctx context.Context, query string, max int) ([]model.Record, error) {
	s.log.Info("Searching", zap.String("query", query), zap.Int("max_videos", max))
	ids, err := s.searcher.Search(ctx, query, max)
	if err != nil {
		s.log.Error("Search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if len(ids) == 0 {
		s.log.Warn("No videos found", zap.String("query", query))
		return nil, ErrNoResults
	}
	s.log.Info("Found videos", zap.Int("count", len(ids)))

	records := make([]model.Record, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		s.log.Info("Fetching details",
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(ids))),
			zap.String("video_id", id))

		rec, err := s.details.Fetch(ctx, id)
		if err != nil {
			s.log.Warn("Skipping video", zap.String("video_id", id), zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// Run collects records for query and saves them to the results file.
// It returns the records and the path written.
func (s *CrawlService) Run(ctx context.Context, query string, max int) ([]model.Record, string, error) {
	records, err := s.Collect(ctx, query, max)
	if err != nil {
		return records, "", err
	}

	path := filepath.Join(s.outputDir, store.FileName(query))
	if err := store.Save(path, records); err != nil {
		s.log.Error("Failed to save results", zap.String("path", path), zap.Error(err))
		return records, "", err
	}
	s.log.Info("Saved results", zap.String("path", path), zap.Int("count", len(records)))
	return records, path, nil
}
