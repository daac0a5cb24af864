package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"videocrawl/internal/model"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// VideoSource resolves a video and opens one of its streams.
// *youtube.Client satisfies it.
type VideoSource interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// LibraryExtractor downloads through the embedded extraction library
type LibraryExtractor struct {
	Source VideoSource
	Log    *zap.Logger
}

// NewLibraryExtractor creates an extractor backed by a default library client
func NewLibraryExtractor(log *zap.Logger) *LibraryExtractor {
	return &LibraryExtractor{Source: &youtube.Client{}, Log: log}
}

func (e *LibraryExtractor) Name() string { return "embedded-library" }

// Available is true whenever a source is configured; the library is linked in.
func (e *LibraryExtractor) Available(context.Context) bool {
	return e.Source != nil
}

func (e *LibraryExtractor) Extract(ctx context.Context, req Request) (*model.DownloadedFormat, error) {
	video, err := e.Source.GetVideoContext(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("resolve video: %w", err)
	}

	format, err := PickFormat(video.Formats, req.Preference)
	if err != nil {
		return nil, err
	}
	if e.Log != nil {
		e.Log.Info("Selected format",
			zap.String("video_id", video.ID),
			zap.Int("itag", format.ItagNo),
			zap.String("mime_type", format.MimeType),
			zap.Int("height", format.Height))
	}

	stream, size, err := e.Source.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := writeStream(req.OutputPath, stream, size, req.Progress); err != nil {
		return nil, err
	}

	return &model.DownloadedFormat{
		FormatID:   strconv.Itoa(format.ItagNo),
		Resolution: fmt.Sprintf("%dx%d", format.Width, format.Height),
		Quality:    fmt.Sprintf("%dp", format.Height),
		Downloaded: true,
	}, nil
}

// writeStream copies r into path via a temporary ".part" file so an
// interrupted download never leaves a file that looks complete.
func writeStream(path string, r io.Reader, size int64, l Listener) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	progress := Monotonic(l)
	progress.Start(size)
	_, err = io.Copy(f, &progressReader{r: r, total: size, l: progress})
	progress.Finish()

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write media: %w", err)
	}
	return os.Rename(tmp, path)
}

type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	l     Listener
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.l.Progress(p.done, p.total)
	}
	return n, err
}

// PickFormat chooses a format carrying both audio and video. Formats in the
// preferred container win; any container is accepted when none matches.
// "best" takes the tallest, "worst" the shortest, and a numeric resolution the
// tallest at or below that height.
func PickFormat(formats youtube.FormatList, pref Preference) (*youtube.Format, error) {
	var muxed youtube.FormatList
	for _, f := range formats.WithAudioChannels() {
		if f.Height > 0 {
			muxed = append(muxed, f)
		}
	}
	if len(muxed) == 0 {
		return nil, ErrNoFormat
	}

	candidates := muxed
	if pref.Container != "" {
		var inContainer youtube.FormatList
		for _, f := range muxed {
			if strings.HasPrefix(f.MimeType, "video/"+pref.Container) {
				inContainer = append(inContainer, f)
			}
		}
		if len(inContainer) > 0 {
			candidates = inContainer
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Height != candidates[j].Height {
			return candidates[i].Height > candidates[j].Height
		}
		return candidates[i].Bitrate > candidates[j].Bitrate
	})

	switch pref.Resolution {
	case "", "best":
		return &candidates[0], nil
	case "worst":
		return &candidates[len(candidates)-1], nil
	}

	limit := pref.MaxHeight()
	for i := range candidates {
		if candidates[i].Height <= limit {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: nothing at or below %dp", ErrNoFormat, limit)
}
