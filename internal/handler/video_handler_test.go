package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
	"videocrawl/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSearcher struct {
	ids []string
	err error
	max int
}

func (s *stubSearcher) Search(_ context.Context, _ string, max int) ([]string, error) {
	s.max = max
	if s.err != nil {
		return []string{}, s.err
	}
	if len(s.ids) > max {
		return s.ids[:max], nil
	}
	return s.ids, nil
}

type stubDetails struct {
	err error
}

func (s *stubDetails) Fetch(_ context.Context, id string) (*model.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Record{
		VideoID:  id,
		URL:      scraper.WatchURL(id),
		Title:    "Cat " + id,
		Tags:     []string{"cat"},
		Duration: "PT2M",
		Formats:  []model.FormatDescriptor{{Itag: "22", MimeType: "video/mp4", Quality: "720p", Resolution: "1280x720"}},
	}, nil
}

type fixture struct {
	router   *gin.Engine
	searcher *stubSearcher
	details  *stubDetails
	dir      string
}

func newFixture(t *testing.T, rl *model.RateLimitConfig) *fixture {
	t.Helper()
	f := &fixture{
		searcher: &stubSearcher{ids: []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}},
		details:  &stubDetails{},
		dir:      t.TempDir(),
	}
	cfg := &model.Config{Crawler: model.CrawlerConfig{MaxVideos: 2, OutputDir: f.dir}}

	vh := NewVideoHandler(
		service.NewVideoService(f.details, nil),
		service.NewCrawlService(f.searcher, f.details, f.dir, nil),
		cfg, nil)

	var rls *service.RateLimitService
	if rl != nil {
		rls = service.NewRateLimitService(rl, nil)
		t.Cleanup(rls.Stop)
	}
	f.router = NewRouter(vh, rls, nil)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := newFixture(t, nil).do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/search?q=a+cat+video", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[model.SearchResponse](t, w)
	assert.Equal(t, "a cat video", resp.Query)
	assert.Equal(t, []string{"aaaaaaaaaaa", "bbbbbbbbbbb"}, resp.VideoIDs, "defaults to the configured max")

	w = f.do(http.MethodGet, "/api/search?q=cats&limit=1000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxVideosPerRequest, f.searcher.max)
}

func TestSearchBadInput(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{"/api/search", "/api/search?q=%20", "/api/search?q=cats&limit=-3", "/api/search?q=cats&limit=x"} {
		w := f.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.searcher.err = fmt.Errorf("search: %w", scraper.ErrTransport)

	w := f.do(http.MethodGet, "/api/search?q=cats", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "search_failed", decode[model.ErrorResponse](t, w).Error)
}

func TestGetVideo(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/video/abcdefghijk", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[model.VideoResponse](t, w)
	assert.Equal(t, "abcdefghijk", resp.VideoID)
	assert.Equal(t, "Cat abcdefghijk", resp.Title)
	assert.EqualValues(t, 120, resp.DurationSeconds)
	assert.Equal(t, map[string]int{"HD": 1}, resp.Categories)

	w = f.do(http.MethodGet, "/api/video/nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.details.err = fmt.Errorf("fetch: %w", scraper.ErrTransport)
	w = f.do(http.MethodGet, "/api/video/abcdefghijk", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCrawl(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/crawl", `{"query":"a cat video","max_videos":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[model.CrawlResponse](t, w)
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Records, 3)
	assert.Equal(t, filepath.Join(f.dir, "youtube_results_a_cat_video.json"), resp.File)
	assert.FileExists(t, resp.File)

	w = f.do(http.MethodPost, "/api/crawl", `{"max_videos":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.searcher.ids = nil
	w = f.do(http.MethodPost, "/api/crawl", `{"query":"nothing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRateLimit(t *testing.T) {
	f := newFixture(t, &model.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, BurstSize: 2})

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/health", "").Code)
	w := f.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = f.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limit_exceeded", decode[model.ErrorResponse](t, w).Error)
}
