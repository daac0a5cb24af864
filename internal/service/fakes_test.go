package service

import (
	"context"
	"errors"
	"fmt"

	"videocrawl/internal/extractor"
	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
)

type fakeSearcher struct {
	ids []string
	err error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, max int) ([]string, error) {
	if f.err != nil {
		return []string{}, f.err
	}
	if len(f.ids) > max {
		return f.ids[:max], nil
	}
	return f.ids, nil
}

type fakeDetails struct {
	failing map[string]bool
	calls   []string
}

func (f *fakeDetails) Fetch(_ context.Context, id string) (*model.Record, error) {
	f.calls = append(f.calls, id)
	if f.failing[id] {
		return nil, fmt.Errorf("fetch video page: %w", scraper.ErrTransport)
	}
	return &model.Record{
		VideoID: id,
		URL:     scraper.WatchURL(id),
		Title:   "Video " + id,
		Tags:    []string{},
		Channel: model.Channel{Name: "Cats Inc"},
		Formats: []model.FormatDescriptor{
			{Itag: "18", MimeType: "video/mp4", Quality: "360p", Resolution: "640x360"},
			{Itag: "22", MimeType: "video/mp4", Quality: "720p", Resolution: "1280x720"},
			{Itag: "140", MimeType: "audio/mp4", Quality: "tiny"},
		},
		Duration: "PT1M5S",
	}, nil
}

type fakeExtractor struct {
	name      string
	available bool
	err       error
	requests  []extractor.Request
}

func (f *fakeExtractor) Name() string                   { return f.name }
func (f *fakeExtractor) Available(context.Context) bool { return f.available }

func (f *fakeExtractor) Extract(_ context.Context, req extractor.Request) (*model.DownloadedFormat, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if req.Progress != nil {
		req.Progress.Start(4)
		req.Progress.Progress(4, 4)
		req.Progress.Finish()
	}
	return &model.DownloadedFormat{FormatID: extractor.CLIFormatID, Resolution: "1920x1080", Downloaded: true}, nil
}

var errBoom = errors.New("boom")
