package scraper

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var playerMarkerRE = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*`)

// Page is one fetched watch page, parsed once and shared by every strategy.
type Page struct {
	VideoID string
	Body    []byte
	Doc     *goquery.Document

	player      []byte
	playerFound bool
}

// NewPage parses body as HTML and locates the embedded player payload.
func NewPage(videoID string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	p := &Page{VideoID: videoID, Body: body, Doc: doc}
	p.player, p.playerFound = ExtractPlayerResponse(body)
	return p, nil
}

// Meta returns the content attribute of the first element matching selector.
func (p *Page) Meta(selector string) string {
	v, _ := p.Doc.Find(selector).First().Attr("content")
	return v
}

// Attr returns attribute attr of the first element matching selector.
func (p *Page) Attr(selector, attr string) string {
	v, _ := p.Doc.Find(selector).First().Attr(attr)
	return v
}

// PlayerResponse decodes the embedded player configuration. The error wraps
// ErrNotFound when the page carries no player payload at all.
func (p *Page) PlayerResponse() (*playerResponse, error) {
	if !p.playerFound {
		return nil, ErrNotFound
	}
	if p.player == nil {
		return nil, errMalformedPlayer
	}
	var pr playerResponse
	if err := json.Unmarshal(p.player, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ExtractPlayerResponse cuts the ytInitialPlayerResponse object literal out of
// raw page markup. found is false when the marker is absent; raw is nil when
// the marker exists but no balanced object follows it.
func ExtractPlayerResponse(body []byte) (raw []byte, found bool) {
	loc := playerMarkerRE.FindIndex(body)
	if loc == nil {
		return nil, false
	}
	return extractJSON(body[loc[1]:]), true
}

// extractJSON returns the complete JSON object starting at b[0] == '{' by
// tracking brace depth outside of string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

type playerResponse struct {
	VideoDetails *struct {
		VideoID          string   `json:"videoId"`
		Title            string   `json:"title"`
		LengthSeconds    string   `json:"lengthSeconds"`
		Keywords         []string `json:"keywords"`
		ChannelID        string   `json:"channelId"`
		ShortDescription string   `json:"shortDescription"`
		ViewCount        string   `json:"viewCount"`
		Author           string   `json:"author"`
	} `json:"videoDetails"`
	StreamingData *struct {
		Formats         []rawFormat `json:"formats"`
		AdaptiveFormats []rawFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

type rawFormat struct {
	Itag         int    `json:"itag"`
	MimeType     string `json:"mimeType"`
	Quality      string `json:"quality"`
	QualityLabel string `json:"qualityLabel"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}
