package service

import (
	"context"
	"errors"

	"videocrawl/internal/model"
	"videocrawl/pkg/logger"
	"videocrawl/pkg/validator"

	"go.uber.org/zap"
)

// ErrInvalidVideoID rejects identifiers that are not 11 URL-safe characters
var ErrInvalidVideoID = errors.New("invalid video id")

// VideoService serves single-video metadata for the API
type VideoService struct {
	details DetailSource
	log     *zap.Logger
}

// NewVideoService creates a new video service
func NewVideoService(details DetailSource, log *zap.Logger) *VideoService {
	return &VideoService{details: details, log: logger.OrNop(log)}
}

// GetVideo fetches the record for videoID and adds derived fields
func (s *VideoService) GetVideo(ctx context.Context, videoID string) (*model.VideoResponse, error) {
	if !validator.ValidateVideoID(videoID) {
		return nil, ErrInvalidVideoID
	}

	rec, err := s.details.Fetch(ctx, videoID)
	if err != nil {
		s.log.Warn("Failed to fetch video", zap.String("video_id", videoID), zap.Error(err))
		return nil, err
	}

	resp := &model.VideoResponse{
		Record:          *rec,
		DurationSeconds: int64(rec.DurationValue().Seconds()),
		Categories:      categorize(rec.Formats),
	}
	s.log.Info("Video info retrieved", zap.String("title", rec.Title), zap.Int("formats", len(rec.Formats)))
	return resp, nil
}

// categorize counts formats per quality bucket
func categorize(formats []model.FormatDescriptor) map[string]int {
	if len(formats) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, f := range formats {
		counts[model.QualityCategory(f)]++
	}
	return counts
}
