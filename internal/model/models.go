package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// Record contains the metadata extracted for one video
type Record struct {
	VideoID     string   `json:"video_id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	UploadDate  string   `json:"upload_date"`
	Channel     Channel  `json:"channel"`

	Formats          []FormatDescriptor `json:"formats,omitempty"`
	ViewCount        *Counter           `json:"view_count,omitempty"`
	LikeCount        *Counter           `json:"like_count,omitempty"`
	Duration         string             `json:"duration,omitempty"` // ISO-8601, e.g. PT3M20S
	ThumbnailURL     string             `json:"thumbnail_url,omitempty"`
	DownloadedFormat *DownloadedFormat  `json:"downloaded_format,omitempty"`
}

// Channel is the uploader reference embedded in a record
type Channel struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FormatDescriptor represents one available media encoding
type FormatDescriptor struct {
	Itag       FormatTag `json:"itag"`
	MimeType   string    `json:"mime_type"`
	Quality    string    `json:"quality"`
	Resolution string    `json:"resolution,omitempty"` // WxH
}

// DownloadedFormat records what the extraction tool actually fetched
type DownloadedFormat struct {
	FormatID   string `json:"format_id"`
	Resolution string `json:"resolution"`
	Quality    string `json:"quality,omitempty"`
	Downloaded bool   `json:"downloaded"`
}

// DurationValue parses the ISO-8601 duration. Zero when absent or malformed.
func (r *Record) DurationValue() time.Duration {
	if r.Duration == "" {
		return 0
	}
	d, err := duration.Parse(r.Duration)
	if err != nil {
		return 0
	}
	return d.ToTimeDuration()
}

// AddTags appends tags that are neither empty nor already present.
func (r *Record) AddTags(tags ...string) {
	seen := make(map[string]bool, len(r.Tags)+len(tags))
	for _, t := range r.Tags {
		seen[t] = true
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		r.Tags = append(r.Tags, t)
	}
}

// FormatTag is the site's internal format identifier. Numeric tags are
// encoded as JSON numbers, sentinels ("unknown", "default") as strings.
type FormatTag string

const (
	TagUnknown FormatTag = "unknown"
	TagDefault FormatTag = "default"
)

// IsNumeric reports whether the tag is a plain itag number.
func (t FormatTag) IsNumeric() bool {
	if t == "" {
		return false
	}
	n, err := strconv.Atoi(string(t))
	return err == nil && strconv.Itoa(n) == string(t)
}

func (t FormatTag) MarshalJSON() ([]byte, error) {
	if t.IsNumeric() {
		return []byte(t), nil
	}
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *FormatTag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = FormatTag(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("format tag: %w", err)
	}
	*t = FormatTag(n.String())
	return nil
}

// Counter is an aggregate count that may arrive as a number or a numeric string.
type Counter int64

// NewCounter returns a pointer for optional record fields.
func NewCounter(n int64) *Counter {
	c := Counter(n)
	return &c
}

func (c *Counter) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	*c = Counter(n)
	return nil
}

// QualityCategory buckets a format by height: Audio, FD, SD, HD or FHD.
func QualityCategory(f FormatDescriptor) string {
	if strings.HasPrefix(f.MimeType, "audio/") {
		return "Audio"
	}
	height := ParseHeight(f.Resolution)
	if height == 0 {
		height = parseQualityHeight(f.Quality)
	}

	switch {
	case height == 0:
		return "Unknown"
	case height >= 1080:
		return "FHD"
	case height >= 720:
		return "HD"
	case height >= 480:
		return "SD"
	default:
		return "FD" // below 480p
	}
}

// ParseHeight extracts the height from a "WxH" resolution string.
func ParseHeight(resolution string) int {
	_, h, ok := strings.Cut(resolution, "x")
	if !ok {
		return 0
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return height
}

// parseQualityHeight reads labels like "720p" or "1080p60".
func parseQualityHeight(label string) int {
	i := strings.IndexByte(label, 'p')
	if i <= 0 {
		return 0
	}
	h, err := strconv.Atoi(label[:i])
	if err != nil {
		return 0
	}
	return h
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CrawlRequest is the body of POST /api/crawl
type CrawlRequest struct {
	Query     string `json:"query" binding:"required"`
	MaxVideos int    `json:"max_videos"`
}

// CrawlResponse reports a finished crawl
type CrawlResponse struct {
	Query   string   `json:"query"`
	File    string   `json:"file"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// SearchResponse lists the identifiers found for a query
type SearchResponse struct {
	Query    string   `json:"query"`
	VideoIDs []string `json:"video_ids"`
}

// VideoResponse wraps a record with derived fields for API clients
type VideoResponse struct {
	Record
	DurationSeconds int64          `json:"duration_seconds,omitempty"`
	Categories      map[string]int `json:"format_categories,omitempty"`
}
