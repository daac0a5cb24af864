package scraper

import (
	"errors"
	"fmt"
	"strings"

	"videocrawl/internal/model"
)

var errMalformedPlayer = errors.New("unbalanced player response object")

// ParseFormats converts the player's format catalog, progressive formats
// first and adaptive formats after them.
func ParseFormats(pr *playerResponse) []model.FormatDescriptor {
	if pr == nil || pr.StreamingData == nil {
		return nil
	}
	var formats []model.FormatDescriptor
	for _, group := range [][]rawFormat{pr.StreamingData.Formats, pr.StreamingData.AdaptiveFormats} {
		for _, f := range group {
			formats = append(formats, describeFormat(f))
		}
	}
	return formats
}

func describeFormat(f rawFormat) model.FormatDescriptor {
	mime := "unknown"
	if f.MimeType != "" {
		mime = strings.TrimSpace(strings.SplitN(f.MimeType, ";", 2)[0])
	}

	quality := f.QualityLabel
	if quality == "" {
		quality = f.Quality
	}
	if quality == "" {
		quality = "unknown"
	}

	d := model.FormatDescriptor{
		Itag:     model.FormatTag(fmt.Sprint(f.Itag)),
		MimeType: mime,
		Quality:  quality,
	}
	if f.Width > 0 && f.Height > 0 {
		d.Resolution = fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	return d
}

// OpenGraphFormat builds a single descriptor from og:video dimensions.
func OpenGraphFormat(p *Page, tag model.FormatTag) (model.FormatDescriptor, bool) {
	width := p.Meta(`meta[property="og:video:width"]`)
	height := p.Meta(`meta[property="og:video:height"]`)
	if width == "" || height == "" {
		return model.FormatDescriptor{}, false
	}
	return model.FormatDescriptor{
		Itag:       tag,
		MimeType:   "video/mp4",
		Quality:    height + "p",
		Resolution: width + "x" + height,
	}, true
}

// DiscoverFormats returns the page's format catalog. A malformed player
// payload falls back to og:video hints tagged "unknown"; a missing or empty
// catalog falls back to the same hints tagged "default".
func DiscoverFormats(p *Page) []model.FormatDescriptor {
	pr, err := p.PlayerResponse()
	if err == nil {
		if formats := ParseFormats(pr); len(formats) > 0 {
			return formats
		}
	}

	tag := model.TagDefault
	if err != nil && !errors.Is(err, ErrNotFound) {
		tag = model.TagUnknown
	}
	if f, ok := OpenGraphFormat(p, tag); ok {
		return []model.FormatDescriptor{f}
	}
	return nil
}
