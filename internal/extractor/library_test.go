package extractor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() youtube.FormatList {
	return youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Width: 640, Height: 360, AudioChannels: 2, Bitrate: 500},
		{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 1500},
		{ItagNo: 43, MimeType: `video/webm; codecs="vp8, vorbis"`, Width: 854, Height: 480, AudioChannels: 2, Bitrate: 800},
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Width: 1920, Height: 1080, Bitrate: 4000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 128},
	}
}

func TestPickFormat(t *testing.T) {
	tests := []struct {
		pref Preference
		want int
	}{
		{Preference{Resolution: "best", Container: "mp4"}, 22},
		{Preference{Resolution: "worst", Container: "mp4"}, 18},
		{Preference{Resolution: "480", Container: "mp4"}, 18},
		{Preference{Resolution: "1080", Container: "mp4"}, 22},
		{Preference{Resolution: "best", Container: "webm"}, 43},
		{Preference{Resolution: "best", Container: "mkv"}, 22},
		{Preference{Resolution: "worst", Container: "mkv"}, 18},
	}
	for _, tt := range tests {
		f, err := PickFormat(catalog(), tt.pref)
		require.NoError(t, err, "%+v", tt.pref)
		assert.Equal(t, tt.want, f.ItagNo, "%+v", tt.pref)
	}
}

func TestPickFormatNothingMatches(t *testing.T) {
	_, err := PickFormat(catalog(), Preference{Resolution: "144", Container: "mp4"})
	assert.ErrorIs(t, err, ErrNoFormat)

	_, err = PickFormat(catalog()[3:], Preference{Resolution: "best"})
	assert.ErrorIs(t, err, ErrNoFormat, "adaptive-only catalogs have no muxed format")
}

type fakeSource struct {
	video     *youtube.Video
	body      string
	videoErr  error
	streamErr error
	gotURL    string
	gotFormat *youtube.Format
}

func (f *fakeSource) GetVideoContext(_ context.Context, url string) (*youtube.Video, error) {
	f.gotURL = url
	return f.video, f.videoErr
}

func (f *fakeSource) GetStreamContext(_ context.Context, _ *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	f.gotFormat = format
	if f.streamErr != nil {
		return nil, 0, f.streamErr
	}
	return io.NopCloser(strings.NewReader(f.body)), int64(len(f.body)), nil
}

func TestLibraryExtractor(t *testing.T) {
	src := &fakeSource{video: &youtube.Video{ID: "abcdefghijk", Formats: catalog()}, body: "0123456789"}
	e := &LibraryExtractor{Source: src}
	require.True(t, e.Available(context.Background()))

	out := filepath.Join(t.TempDir(), "video.mp4")
	rec := &recorder{}
	df, err := e.Extract(context.Background(), Request{
		URL:        "https://www.youtube.com/watch?v=abcdefghijk",
		Preference: Preference{Resolution: "720", Container: "mp4"},
		OutputPath: out,
		Progress:   rec,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", src.gotURL)
	assert.Equal(t, 22, src.gotFormat.ItagNo)
	assert.Equal(t, "22", df.FormatID)
	assert.Equal(t, "1280x720", df.Resolution)
	assert.Equal(t, "720p", df.Quality)
	assert.True(t, df.Downloaded)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.NoFileExists(t, out+".part")

	require.NotEmpty(t, rec.events)
	assert.Equal(t, "start 10", rec.events[0])
	assert.Equal(t, "10/10", rec.events[len(rec.events)-2])
	assert.Equal(t, "finish", rec.events[len(rec.events)-1])
}

func TestLibraryExtractorErrors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "video.mp4")

	e := &LibraryExtractor{Source: &fakeSource{videoErr: errors.New("private video")}}
	_, err := e.Extract(context.Background(), Request{URL: "u", OutputPath: out})
	assert.ErrorContains(t, err, "private video")

	e = &LibraryExtractor{Source: &fakeSource{
		video:     &youtube.Video{Formats: catalog()},
		streamErr: errors.New("403"),
	}}
	_, err = e.Extract(context.Background(), Request{URL: "u", OutputPath: out})
	assert.ErrorContains(t, err, "403")
	assert.NoFileExists(t, out)

	assert.False(t, (&LibraryExtractor{}).Available(context.Background()))
}
