// Package youtube ingests YouTube videos: caption transcript via the
// timedtext endpoint, metadata via the YouTube Data API when a key is
// configured, oEmbed otherwise.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	defaultTimedTextURL = "https://video.google.com/timedtext"
	defaultOEmbedURL    = "https://www.youtube.com/oembed"
	defaultTimeout      = 30 * time.Second
)

// videoIDPatterns match the URL forms a video id hides in.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([\w-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/live/)([\w-]{11})`),
}

// Config holds YouTube fetcher configuration.
type Config struct {
	// APIKey enables metadata lookup via the YouTube Data API. Optional;
	// without it metadata comes from the public oEmbed endpoint.
	APIKey string

	// Language is the caption language to request. Defaults to "en".
	Language string
}

// Fetcher downloads video transcripts and metadata.
type Fetcher struct {
	apiKey       string
	language     string
	client       *http.Client
	timedTextURL string
	oembedURL    string
}

// New creates a new YouTube fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Fetcher{
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		client:       &http.Client{Timeout: defaultTimeout},
		timedTextURL: defaultTimedTextURL,
		oembedURL:    defaultOEmbedURL,
	}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeYouTube
}

// CanFetch claims URLs containing a recognisable video id.
func (f *Fetcher) CanFetch(source string) bool {
	return ExtractVideoID(source) != ""
}

// ExtractVideoID pulls the 11-character video id out of any supported URL
// form. Returns "" when none is found.
func ExtractVideoID(source string) string {
	for _, pattern := range videoIDPatterns {
		if matches := pattern.FindStringSubmatch(source); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

// Fetch retrieves the caption transcript and video metadata.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	videoID := ExtractVideoID(source)
	if videoID == "" {
		return nil, fmt.Errorf("%w: no video id in %s", domain.ErrInvalidInput, source)
	}

	entries, err := f.fetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	title, metadata := f.fetchMetadata(ctx, videoID, source)
	metadata["video_id"] = videoID
	metadata["url"] = source

	return &driven.FetchResult{
		Title:    title,
		Entries:  entries,
		Metadata: metadata,
	}, nil
}

// timedTextXML is the caption document served by the timedtext endpoint.
type timedTextXML struct {
	Texts []struct {
		Start   float64 `xml:"start,attr"`
		Content string  `xml:",chardata"`
	} `xml:"text"`
}

// fetchTranscript downloads and parses the caption track.
func (f *Fetcher) fetchTranscript(ctx context.Context, videoID string) ([]domain.Entry, error) {
	u := fmt.Sprintf("%s?lang=%s&v=%s", f.timedTextURL, url.QueryEscape(f.language), url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building transcript request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching transcript: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: video has no %s captions", domain.ErrInvalidInput, f.language)
	}

	var doc timedTextXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	if len(doc.Texts) == 0 {
		return nil, fmt.Errorf("%w: video has no %s captions", domain.ErrInvalidInput, f.language)
	}

	entries := make([]domain.Entry, 0, len(doc.Texts))
	for i, text := range doc.Texts {
		content := strings.TrimSpace(html.UnescapeString(text.Content))
		if content == "" {
			continue
		}
		entries = append(entries, domain.Entry{
			Text:      content,
			Start:     i + 1,
			Timestamp: formatOffset(text.Start),
		})
	}
	return entries, nil
}

// fetchMetadata looks up title/channel/duration. Metadata failures are not
// fatal; the transcript is the document.
func (f *Fetcher) fetchMetadata(ctx context.Context, videoID, source string) (string, map[string]any) {
	if f.apiKey != "" {
		if title, meta, err := f.dataAPIMetadata(ctx, videoID); err == nil {
			return title, meta
		}
	}
	if title, meta, err := f.oembedMetadata(ctx, source); err == nil {
		return title, meta
	}
	return "YouTube video " + videoID, map[string]any{}
}

// dataAPIMetadata queries the YouTube Data API v3.
func (f *Fetcher) dataAPIMetadata(ctx context.Context, videoID string) (string, map[string]any, error) {
	svc, err := youtubeapi.NewService(ctx, option.WithAPIKey(f.apiKey))
	if err != nil {
		return "", nil, fmt.Errorf("creating youtube service: %w", err)
	}

	resp, err := svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("video lookup: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", nil, fmt.Errorf("%w: video %s", domain.ErrNotFound, videoID)
	}

	item := resp.Items[0]
	meta := map[string]any{
		"channel":   item.Snippet.ChannelTitle,
		"published": item.Snippet.PublishedAt,
	}
	if item.ContentDetails != nil {
		meta["duration"] = item.ContentDetails.Duration
	}
	return item.Snippet.Title, meta, nil
}

// oembedResponse is the subset of the oEmbed payload we use.
type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// oembedMetadata queries the keyless oEmbed endpoint.
func (f *Fetcher) oembedMetadata(ctx context.Context, source string) (string, map[string]any, error) {
	u := fmt.Sprintf("%s?url=%s&format=json", f.oembedURL, url.QueryEscape(source))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("oembed lookup: HTTP %d", resp.StatusCode)
	}

	var payload oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", nil, err
	}
	if payload.Title == "" {
		return "", nil, fmt.Errorf("oembed lookup: empty title")
	}
	return payload.Title, map[string]any{"channel": payload.AuthorName}, nil
}

// formatOffset renders a caption offset in seconds as mm:ss or h:mm:ss.
func formatOffset(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
