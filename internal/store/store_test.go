package store

import (
	"os"
	"path/filepath"
	"testing"

	"videocrawl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []model.Record {
	return []model.Record{
		{
			VideoID:     "abcdefghijk",
			URL:         "https://www.youtube.com/watch?v=abcdefghijk",
			Title:       "Café <piano> & cat",
			Description: "#cats",
			Tags:        []string{"cat", "#cats"},
			UploadDate:  "2023-04-01",
			Channel:     model.Channel{Name: "Piano Cat", URL: "https://www.youtube.com/@pianocat"},
			Formats: []model.FormatDescriptor{
				{Itag: "18", MimeType: "video/mp4", Quality: "360p", Resolution: "640x360"},
				{Itag: model.TagUnknown, MimeType: "video/mp4", Quality: "720p", Resolution: "1280x720"},
			},
			ViewCount: model.NewCounter(15234),
			Duration:  "PT3M20S",
		},
		{
			VideoID: "zyxwvutsrqp",
			URL:     "https://www.youtube.com/watch?v=zyxwvutsrqp",
			Tags:    []string{},
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "youtube_results_a_cat_video.json", FileName("a cat video"))
	assert.Equal(t, "youtube_results_whatnow.json", FileName(`what/now?`))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName("a cat video"))
	records := sample()
	require.NoError(t, Save(path, records))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestSaveFormatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Save(path, sample()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "[\n  {\n    \"video_id\": \"abcdefghijk\"")
	assert.Contains(t, s, `"title": "Café <piano> & cat"`, "non-ASCII and HTML characters are written verbatim")
	assert.Contains(t, s, `"itag": 18`)
	assert.Contains(t, s, `"itag": "unknown"`)
	assert.NotContains(t, s, "like_count")
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, Save(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	records, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = LoadNonEmpty(path)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestWriteSidecar(t *testing.T) {
	rec := sample()[0]
	rec.DownloadedFormat = &model.DownloadedFormat{FormatID: "18", Resolution: "640x360", Quality: "360p", Downloaded: true}
	path := filepath.Join(t.TempDir(), "Piano_Cat", "x_info.json")
	require.NoError(t, WriteSidecar(path, &rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"downloaded_format\": {\n    \"format_id\": \"18\"")
}
