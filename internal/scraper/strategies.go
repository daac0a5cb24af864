package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"videocrawl/internal/model"

	"github.com/PuerkitoBio/goquery"
)

var hashtagRE = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// Fields is the partial metadata one strategy could read off a page.
type Fields struct {
	Title        string
	Description  string
	Tags         []string
	UploadDate   string
	ChannelName  string
	ChannelURL   string
	ViewCount    *model.Counter
	LikeCount    *model.Counter
	Duration     string
	ThumbnailURL string
}

// Strategy reads Fields from one of the page's redundant metadata sources.
type Strategy struct {
	Name    string
	Extract func(p *Page) Fields
}

// DefaultStrategies lists the sources in precedence order.
var DefaultStrategies = []Strategy{
	{Name: "open_graph", Extract: OpenGraph},
	{Name: "microdata", Extract: Microdata},
	{Name: "structured_data", Extract: StructuredData},
	{Name: "player_config", Extract: PlayerConfig},
}

// Merge applies fields onto rec. A scalar already set is never overwritten;
// tags accumulate in order with duplicates dropped.
func Merge(rec *model.Record, fields ...Fields) {
	for _, f := range fields {
		setOnce(&rec.Title, f.Title)
		setOnce(&rec.Description, f.Description)
		setOnce(&rec.UploadDate, f.UploadDate)
		setOnce(&rec.Channel.Name, f.ChannelName)
		setOnce(&rec.Channel.URL, f.ChannelURL)
		setOnce(&rec.Duration, f.Duration)
		setOnce(&rec.ThumbnailURL, f.ThumbnailURL)
		if rec.ViewCount == nil {
			rec.ViewCount = f.ViewCount
		}
		if rec.LikeCount == nil {
			rec.LikeCount = f.LikeCount
		}
		rec.AddTags(f.Tags...)
	}
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// OpenGraph reads og: properties plus the description/keywords meta tags.
func OpenGraph(p *Page) Fields {
	f := Fields{
		Title:        p.Meta(`meta[property="og:title"]`),
		Description:  p.Meta(`meta[name="description"]`),
		ThumbnailURL: p.Meta(`meta[property="og:image"]`),
	}
	if kw := p.Meta(`meta[name="keywords"]`); kw != "" {
		for _, tag := range strings.Split(kw, ",") {
			f.Tags = append(f.Tags, strings.TrimSpace(tag))
		}
	}
	f.Tags = append(f.Tags, hashtagRE.FindAllString(f.Description, -1)...)
	return f
}

// Microdata reads the schema.org itemprop attributes.
func Microdata(p *Page) Fields {
	return Fields{
		UploadDate:  p.Meta(`meta[itemprop="datePublished"]`),
		ChannelName: p.Meta(`link[itemprop="name"]`),
		ChannelURL:  absoluteURL(p.Attr(`link[itemprop="url"]`, "href")),
		Duration:    p.Meta(`meta[itemprop="duration"]`),
	}
}

type ldVideoObject struct {
	Type                 string          `json:"@type"`
	UploadDate           string          `json:"uploadDate"`
	Author               json.RawMessage `json:"author"`
	InteractionStatistic json.RawMessage `json:"interactionStatistic"`
}

type ldCounter struct {
	Type                 string          `json:"@type"`
	InteractionType      json.RawMessage `json:"interactionType"`
	UserInteractionCount *model.Counter  `json:"userInteractionCount"`
}

// StructuredData reads application/ld+json VideoObject scripts. Scripts that
// fail to decode are skipped.
func StructuredData(p *Page) Fields {
	var f Fields
	p.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		for _, obj := range decodeLD(s.Text()) {
			if obj.Type != "VideoObject" {
				continue
			}
			setOnce(&f.UploadDate, obj.UploadDate)

			var author struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(obj.Author, &author) == nil {
				setOnce(&f.ChannelName, author.Name)
			}

			for _, stat := range decodeList[ldCounter](obj.InteractionStatistic) {
				if stat.Type != "InteractionCounter" || stat.UserInteractionCount == nil {
					continue
				}
				switch interactionKind(stat.InteractionType) {
				case "WatchAction":
					f.ViewCount = stat.UserInteractionCount
				case "LikeAction":
					f.LikeCount = stat.UserInteractionCount
				}
			}
		}
	})
	return f
}

// PlayerConfig reads videoDetails from the embedded player payload.
func PlayerConfig(p *Page) Fields {
	pr, err := p.PlayerResponse()
	if err != nil || pr.VideoDetails == nil {
		return Fields{}
	}
	d := pr.VideoDetails

	f := Fields{
		Title:       d.Title,
		Description: d.ShortDescription,
		Tags:        d.Keywords,
		ChannelName: d.Author,
	}
	if d.ChannelID != "" {
		f.ChannelURL = SiteURL + "/channel/" + d.ChannelID
	}
	if n, err := strconv.ParseInt(d.ViewCount, 10, 64); err == nil {
		f.ViewCount = model.NewCounter(n)
	}
	if secs, err := strconv.Atoi(d.LengthSeconds); err == nil && secs > 0 {
		f.Duration = "PT" + strconv.Itoa(secs) + "S"
	}
	return f
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return SiteURL + href
}

// decodeLD accepts a single object or an array of objects.
func decodeLD(text string) []ldVideoObject {
	return decodeList[ldVideoObject](json.RawMessage(strings.TrimSpace(text)))
}

func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one T
	if err := json.Unmarshal(raw, &one); err == nil {
		return []T{one}
	}
	return nil
}

// interactionKind normalises "http://schema.org/WatchAction" and
// {"@type": "WatchAction"} to "WatchAction".
func interactionKind(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s[strings.LastIndex(s, "/")+1:]
	}
	var obj struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Type
	}
	return ""
}
