package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestAPISearcher(t *testing.T) {
	var gotKey, gotQuery, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": map[string]string{"kind": "youtube#video", "videoId": "AAAAAAAAAAA"}},
				{"id": map[string]string{"kind": "youtube#video", "videoId": "BBBBBBBBBBB"}},
				{"id": map[string]string{"kind": "youtube#video", "videoId": "AAAAAAAAAAA"}},
			},
		})
	}))
	defer srv.Close()

	s, err := NewAPISearcher(context.Background(), "test-key", nil,
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	ids, err := s.Search(context.Background(), "a cat video", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAAAAAAAAA", "BBBBBBBBBBB"}, ids)
	assert.Equal(t, "a cat video", gotQuery)
	assert.Equal(t, "video", gotType)
	assert.Equal(t, "test-key", gotKey)
}

func TestAPISearcherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewAPISearcher(context.Background(), "k", nil,
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	ids, err := s.Search(context.Background(), "cats", 3)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, ids)
}
