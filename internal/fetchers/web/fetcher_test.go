package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Sample &amp; Article</title>
  <meta property="article:published_time" content="2024-03-15T10:00:00Z">
  <style>body { color: red; }</style>
  <script>console.log("noise");</script>
</head>
<body>
  <h1>Heading</h1>
  <p>First paragraph of the article.</p>
  <p>Second paragraph with <b>bold</b> text.</p>
  <div>A closing thought.</div>
</body>
</html>`

func TestCanFetch(t *testing.T) {
	f := New()

	assert.True(t, f.CanFetch("https://example.com/article"))
	assert.True(t, f.CanFetch("http://example.com"))
	assert.False(t, f.CanFetch("/local/file.txt"))
	assert.False(t, f.CanFetch("ftp://example.com/file"))
}

func TestFetch_ExtractsTextAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	result, err := NewWithClient(srv.Client()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Sample & Article", result.Title)
	assert.Equal(t, "2024-03-15T10:00:00Z", result.Metadata["published"])

	var texts []string
	for _, e := range result.Entries {
		texts = append(texts, e.Text)
	}
	assert.Contains(t, texts, "Heading")
	assert.Contains(t, texts, "First paragraph of the article.")
	assert.Contains(t, texts, "Second paragraph with bold text.")
	for _, text := range texts {
		assert.NotContains(t, text, "console.log")
		assert.NotContains(t, text, "color: red")
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewWithClient(srv.Client()).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body><script>only();</script></body></html>"))
	}))
	defer srv.Close()

	_, err := NewWithClient(srv.Client()).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripHTML_BlockSeparation(t *testing.T) {
	got := stripHTML("<p>One</p><p>Two</p>")
	assert.Equal(t, "One\nTwo", got)
}

func TestExtractHTMLTitle_Fallback(t *testing.T) {
	assert.Equal(t, "my great post", extractHTMLTitle("<html></html>", "https://blog.example.com/my-great_post/"))
}

func TestExtractPublishedDate_TimeTag(t *testing.T) {
	got := extractPublishedDate(`<time datetime="2023-01-02">2 Jan</time>`)
	assert.Equal(t, "2023-01-02", got)
}
