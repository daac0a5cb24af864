package service

import (
	"context"
	"path/filepath"
	"testing"

	"videocrawl/internal/scraper"
	"videocrawl/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlRun(t *testing.T) {
	dir := t.TempDir()
	details := &fakeDetails{failing: map[string]bool{"ccccccccccc": true}}
	searcher := &fakeSearcher{ids: []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd", "eeeeeeeeeee", "fffffffffff"}}
	s := NewCrawlService(searcher, details, dir, nil)

	records, path, err := s.Run(context.Background(), "a cat video", 5)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "youtube_results_a_cat_video.json"), path)
	assert.Equal(t, []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd", "eeeeeeeeeee"}, details.calls)
	require.Len(t, records, 4, "the failing item is dropped")
	for _, r := range records {
		assert.Len(t, r.VideoID, 11)
		assert.NotEmpty(t, r.URL)
		assert.NotEmpty(t, r.Title)
	}

	saved, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, saved)
}

func TestCrawlRunStopsOnEmptySearch(t *testing.T) {
	dir := t.TempDir()
	details := &fakeDetails{}
	s := NewCrawlService(&fakeSearcher{}, details, dir, nil)

	_, path, err := s.Run(context.Background(), "nothing", 5)
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Empty(t, path)
	assert.Empty(t, details.calls)
	assert.NoFileExists(t, filepath.Join(dir, store.FileName("nothing")))
}

func TestCrawlRunSearchTransportError(t *testing.T) {
	s := NewCrawlService(&fakeSearcher{err: scraper.ErrTransport}, &fakeDetails{}, t.TempDir(), nil)
	_, _, err := s.Run(context.Background(), "q", 5)
	assert.ErrorIs(t, err, scraper.ErrTransport)
}

func TestCrawlCollectHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	details := &fakeDetails{}
	s := NewCrawlService(&fakeSearcher{ids: []string{"aaaaaaaaaaa"}}, details, t.TempDir(), nil)

	_, err := s.Collect(ctx, "q", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, details.calls)
}
