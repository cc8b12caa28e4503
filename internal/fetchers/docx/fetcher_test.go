package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// writeDocx builds a minimal OOXML package on disk.
func writeDocx(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

const documentXMLBody = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
    <p><r><t>  </t></r></p>
    <p><r><t>Third.</t></r></p>
  </body>
</document>`

func TestCanFetch(t *testing.T) {
	f := New()

	assert.True(t, f.CanFetch("report.docx"))
	assert.True(t, f.CanFetch("/tmp/Letter.DOCX"))
	assert.False(t, f.CanFetch("report.doc"))
	assert.False(t, f.CanFetch("https://example.com/report.docx"))
}

func TestFetch_ExtractsParagraphs(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLBody,
	})

	result, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, result.Entries, 3)
	assert.Equal(t, "First paragraph.", result.Entries[0].Text)
	assert.Equal(t, "Second paragraph.", result.Entries[1].Text)
	assert.Equal(t, "Third.", result.Entries[2].Text)
	assert.Equal(t, 1, result.Entries[0].Start)
	assert.Equal(t, 3, result.Entries[2].Start)
	assert.Equal(t, "test", result.Title)
}

func TestFetch_TitleFromCoreProperties(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLBody,
		"docProps/core.xml": `<?xml version="1.0"?><coreProperties><title>Quarterly Review</title></coreProperties>`,
	})

	result, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Review", result.Title)
}

func TestFetch_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))

	_, err := New().Fetch(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetch_EmptyDocument(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?><document><body></body></document>`,
	})

	_, err := New().Fetch(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
