package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"videocrawl/internal/model"
	"videocrawl/internal/scraper"
	"videocrawl/internal/service"
	"videocrawl/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxVideosPerRequest caps how much work one API call can ask for
const maxVideosPerRequest = 50

// VideoHandler handles video-related requests
type VideoHandler struct {
	videoService *service.VideoService
	crawlService *service.CrawlService
	cfg          *model.Config
	log          *zap.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(vs *service.VideoService, cs *service.CrawlService, cfg *model.Config, log *zap.Logger) *VideoHandler {
	return &VideoHandler{
		videoService: vs,
		crawlService: cs,
		cfg:          cfg,
		log:          logger.OrNop(log),
	}
}

// Search handles GET /api/search
func (h *VideoHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.log.Warn("Empty query provided")
		abortWithError(c, http.StatusBadRequest, "invalid_query", "Search query is required")
		return
	}

	limit, ok := h.parseLimit(c.Query("limit"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "invalid_limit", "Limit must be a positive number")
		return
	}

	ids, err := h.crawlService.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.log.Error("Search failed", zap.Error(err), zap.String("query", query))
		abortWithError(c, statusFor(err), "search_failed", "Failed to search videos")
		return
	}

	c.JSON(http.StatusOK, model.SearchResponse{Query: query, VideoIDs: ids})
}

// GetVideo handles GET /api/video/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID := c.Param("id")

	resp, err := h.videoService.GetVideo(c.Request.Context(), videoID)
	if errors.Is(err, service.ErrInvalidVideoID) {
		h.log.Warn("Invalid video id", zap.String("video_id", videoID))
		abortWithError(c, http.StatusBadRequest, "invalid_video_id", "Video id must be 11 characters of letters, digits, '-' or '_'")
		return
	}
	if err != nil {
		h.log.Error("Failed to get video info", zap.Error(err), zap.String("video_id", videoID))
		abortWithError(c, statusFor(err), "fetch_failed", "Failed to fetch video information")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Crawl handles POST /api/crawl
func (h *VideoHandler) Crawl(c *gin.Context) {
	var req model.CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid crawl request", zap.Error(err))
		abortWithError(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		return
	}

	limit := req.MaxVideos
	if limit <= 0 {
		limit = h.cfg.Crawler.MaxVideos
	}
	if limit > maxVideosPerRequest {
		limit = maxVideosPerRequest
	}

	records, path, err := h.crawlService.Run(c.Request.Context(), req.Query, limit)
	if errors.Is(err, service.ErrNoResults) {
		abortWithError(c, http.StatusNotFound, "no_results", "No videos found for query")
		return
	}
	if err != nil {
		h.log.Error("Crawl failed", zap.Error(err), zap.String("query", req.Query))
		abortWithError(c, statusFor(err), "crawl_failed", "Failed to crawl videos")
		return
	}

	c.JSON(http.StatusOK, model.CrawlResponse{
		Query:   req.Query,
		File:    path,
		Count:   len(records),
		Records: records,
	})
}

// HealthCheck handles GET /api/health
func (h *VideoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "video-crawler",
	})
}

func (h *VideoHandler) parseLimit(raw string) (int, bool) {
	if raw == "" {
		return h.cfg.Crawler.MaxVideos, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxVideosPerRequest {
		n = maxVideosPerRequest
	}
	return n, true
}

// statusFor maps upstream failures to 502 and everything else to 500
func statusFor(err error) int {
	if errors.Is(err, scraper.ErrTransport) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
