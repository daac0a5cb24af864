package scraper

import (
	"context"
	"fmt"

	"videocrawl/internal/client"
	"videocrawl/internal/model"

	"go.uber.org/zap"
)

// DetailFetcher turns a video id into a Record.
type DetailFetcher struct {
	Client     client.HTTPClient
	BaseURL    string
	Strategies []Strategy
	Log        *zap.Logger
}

// NewDetailFetcher creates a fetcher against the public site with the default strategies
func NewDetailFetcher(c client.HTTPClient, log *zap.Logger) *DetailFetcher {
	return &DetailFetcher{Client: c, BaseURL: SiteURL, Strategies: DefaultStrategies, Log: log}
}

// Fetch downloads the watch page for videoID once and extracts every field it
// can. Transport failures return a nil record and an error wrapping ErrTransport.
func (f *DetailFetcher) Fetch(ctx context.Context, videoID string) (*model.Record, error) {
	base := f.BaseURL
	if base == "" {
		base = SiteURL
	}
	body, err := client.Get(ctx, f.Client, base+watchPath+videoID)
	if err != nil {
		return nil, transportError("fetch video page", err)
	}

	page, err := NewPage(videoID, body)
	if err != nil {
		return nil, fmt.Errorf("parse video page: %w", err)
	}

	return f.Extract(page), nil
}

// Extract builds a record from an already fetched page.
func (f *DetailFetcher) Extract(page *Page) *model.Record {
	rec := &model.Record{
		VideoID: page.VideoID,
		URL:     WatchURL(page.VideoID),
		Tags:    []string{},
	}

	strategies := f.Strategies
	if strategies == nil {
		strategies = DefaultStrategies
	}
	for _, s := range strategies {
		fields := s.Extract(page)
		Merge(rec, fields)
		if f.Log != nil {
			f.Log.Debug("Strategy applied",
				zap.String("video_id", page.VideoID),
				zap.String("strategy", s.Name),
				zap.Bool("title", fields.Title != ""))
		}
	}

	rec.Formats = DiscoverFormats(page)
	return rec
}
