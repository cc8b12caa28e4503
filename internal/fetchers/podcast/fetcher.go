// Package podcast ingests podcast episodes. Apple Podcasts URLs are resolved
// through the iTunes lookup API to the show's RSS feed; the episode's show
// notes become the document entries. The episode audio URL is recorded in
// metadata so a transcription pass can hand it to the audio fetcher.
package podcast

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	defaultLookupURL = "https://itunes.apple.com/lookup"
	defaultTimeout   = 30 * time.Second
)

var (
	showIDPattern    = regexp.MustCompile(`/id(\d+)`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	brOrParaPattern  = regexp.MustCompile(`(?i)<(?:br\s*/?|/p)>`)
)

// Fetcher resolves podcast episodes to show-notes entries.
type Fetcher struct {
	client    *http.Client
	lookupURL string
}

// New creates a new podcast fetcher.
func New() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		lookupURL: defaultLookupURL,
	}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypePodcast
}

// CanFetch claims Apple Podcasts URLs and direct RSS feed URLs.
func (f *Fetcher) CanFetch(source string) bool {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Host)
	if host == "podcasts.apple.com" || host == "itunes.apple.com" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".rss")
}

// Fetch resolves the source to an RSS feed, picks the episode and returns
// its show notes.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, source)
	}

	feedURL := source
	episodeID := ""
	host := strings.ToLower(u.Host)
	if host == "podcasts.apple.com" || host == "itunes.apple.com" {
		feedURL, err = f.resolveFeedURL(ctx, u)
		if err != nil {
			return nil, err
		}
		episodeID = u.Query().Get("i")
	}

	feed, err := f.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if len(feed.Channel.Items) == 0 {
		return nil, fmt.Errorf("%w: feed has no episodes", domain.ErrInvalidInput)
	}

	episode := pickEpisode(feed, episodeID)
	entries := notesEntries(episode)
	if len(entries) == 0 {
		// Show without notes still gets a stub entry so the episode can be
		// transcribed or discussed.
		entries = []domain.Entry{{Text: episode.Title, Start: 1}}
	}

	metadata := map[string]any{
		"show":     feed.Channel.Title,
		"feed_url": feedURL,
		"format":   "podcast",
	}
	if episode.PubDate != "" {
		metadata["published"] = episode.PubDate
	}
	if episode.Duration != "" {
		metadata["duration"] = episode.Duration
	}
	if episode.Enclosure.URL != "" {
		metadata["audio_url"] = episode.Enclosure.URL
	}

	title := episode.Title
	if feed.Channel.Title != "" {
		title = fmt.Sprintf("%s - %s", feed.Channel.Title, episode.Title)
	}

	return &driven.FetchResult{
		Title:    title,
		Entries:  entries,
		Metadata: metadata,
	}, nil
}

// lookupResponse is the iTunes lookup payload subset we use.
type lookupResponse struct {
	Results []struct {
		FeedURL string `json:"feedUrl"`
	} `json:"results"`
}

// resolveFeedURL turns an Apple Podcasts show URL into the RSS feed URL.
func (f *Fetcher) resolveFeedURL(ctx context.Context, u *url.URL) (string, error) {
	matches := showIDPattern.FindStringSubmatch(u.Path)
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: no show id in %s", domain.ErrInvalidInput, u.String())
	}

	lookup := fmt.Sprintf("%s?id=%s&entity=podcast", f.lookupURL, matches[1])
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("itunes lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("itunes lookup: HTTP %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("itunes lookup: %w", err)
	}
	if len(payload.Results) == 0 || payload.Results[0].FeedURL == "" {
		return "", fmt.Errorf("%w: show has no public feed", domain.ErrNotFound)
	}
	return payload.Results[0].FeedURL, nil
}

// rssFeed is the RSS 2.0 structure podcast feeds use, including the iTunes
// namespace extensions for episode ids and durations.
type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID        string `xml:"guid"`
	EpisodeID   string `xml:"episodeId"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Duration    string `xml:"duration"`
	Enclosure   struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// fetchFeed downloads and parses the RSS feed.
func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string) (*rssFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return &feed, nil
}

// pickEpisode selects the episode matching the Apple episode id, falling
// back to the most recent one (feeds list newest first).
func pickEpisode(feed *rssFeed, episodeID string) *rssItem {
	if episodeID != "" {
		for i := range feed.Channel.Items {
			item := &feed.Channel.Items[i]
			if item.EpisodeID == episodeID || strings.Contains(item.GUID, episodeID) {
				return item
			}
		}
	}
	return &feed.Channel.Items[0]
}

// notesEntries converts the episode description (often HTML) into paragraph
// entries.
func notesEntries(episode *rssItem) []domain.Entry {
	text := brOrParaPattern.ReplaceAllString(episode.Description, "\n\n")
	text = htmlTagPattern.ReplaceAllString(text, "")
	return fetchers.SegmentText(text)
}
