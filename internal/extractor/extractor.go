// Package extractor fetches media for a video through the yt-dlp binary or
// the embedded extraction library.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"videocrawl/internal/model"
)

var (
	// ErrUnavailable means no extraction tool can be used
	ErrUnavailable = errors.New("no extraction tool available")
	// ErrNoFormat means the video offers nothing matching the preference
	ErrNoFormat = errors.New("no matching format")
	// ErrMissingVideoID rejects records that cannot be resolved to a URL
	ErrMissingVideoID = errors.New("video id missing from record")
)

// Preference is the resolution and container a download should aim for
type Preference struct {
	Resolution string // "best", "worst" or a maximum height
	Container  string // e.g. "mp4"
}

// MaxHeight returns the height cap, 0 for best/worst.
func (p Preference) MaxHeight() int {
	h, err := strconv.Atoi(p.Resolution)
	if err != nil || h < 0 {
		return 0
	}
	return h
}

// Request describes a single media download
type Request struct {
	URL        string
	Selector   string
	Preference Preference
	OutputPath string
	Progress   Listener
}

// Extractor downloads one media file
type Extractor interface {
	Name() string
	Available(ctx context.Context) bool
	Extract(ctx context.Context, req Request) (*model.DownloadedFormat, error)
}

// FormatSelector builds the yt-dlp format selection expression for a
// resolution ("best", "worst" or a height) and container extension.
func FormatSelector(resolution, ext string) string {
	switch resolution {
	case "best":
		return fmt.Sprintf("bestvideo[ext=%[1]s]+bestaudio/best[ext=%[1]s]/best", ext)
	case "worst":
		return fmt.Sprintf("worstvideo[ext=%[1]s]+worstaudio/worst[ext=%[1]s]/worst", ext)
	default:
		return fmt.Sprintf("bestvideo[height<=%[1]s][ext=%[2]s]+bestaudio/best[height<=%[1]s][ext=%[2]s]/best[height<=%[1]s]", resolution, ext)
	}
}

// Choose returns the embedded library when preferLibrary is set and it is
// available, otherwise the CLI when it is available.
func Choose(ctx context.Context, preferLibrary bool, library, cli Extractor) (Extractor, error) {
	if preferLibrary && library != nil && library.Available(ctx) {
		return library, nil
	}
	if cli != nil && cli.Available(ctx) {
		return cli, nil
	}
	return nil, ErrUnavailable
}
