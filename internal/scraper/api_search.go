package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// apiMaxResults is the Data API page size ceiling
const apiMaxResults = 50

// APISearcher looks identifiers up through the YouTube Data API v3.
type APISearcher struct {
	service *youtube.Service
	log     *zap.Logger
}

// NewAPISearcher authenticates with an API key. Extra options are passed to
// the service constructor (endpoint overrides, HTTP clients).
func NewAPISearcher(ctx context.Context, apiKey string, log *zap.Logger, opts ...option.ClientOption) (*APISearcher, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error while create youtube service: %w", err)
	}
	return &APISearcher{service: service, log: log}, nil
}

// Search returns up to max distinct video ids in API ranking order.
func (s *APISearcher) Search(ctx context.Context, query string, max int) ([]string, error) {
	if max <= 0 {
		return []string{}, nil
	}

	var ids []string
	pageToken := ""
	for len(ids) < max {
		size := max - len(ids)
		if size > apiMaxResults {
			size = apiMaxResults
		}

		call := s.service.Search.List([]string{"id"}).
			Q(query).
			Type("video").
			MaxResults(int64(size)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return []string{}, transportError("youtube api search", err)
		}

		for _, item := range resp.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				ids = append(ids, item.Id.VideoId)
			}
		}

		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	ids = DedupeIDs(ids, max)
	if s.log != nil {
		s.log.Debug("Data API search finished", zap.String("query", query), zap.Int("ids", len(ids)))
	}
	return ids, nil
}
