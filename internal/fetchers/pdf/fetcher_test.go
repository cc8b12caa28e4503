package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanFetch(t *testing.T) {
	f := New()

	assert.True(t, f.CanFetch("report.pdf"))
	assert.True(t, f.CanFetch("/docs/Paper.PDF"))
	assert.False(t, f.CanFetch("notes.txt"))
	assert.False(t, f.CanFetch("https://example.com/report.pdf"))
}

func TestExtractText_TjOperators(t *testing.T) {
	content := []byte(`BT /F1 12 Tf 72 720 Td (Hello) Tj (World) Tj ET`)

	got := extractText(content)
	assert.Contains(t, got, "Hello")
	assert.Contains(t, got, "World")
}

func TestExtractText_TJArray(t *testing.T) {
	content := []byte(`BT [(Frag) -250 (mented)] TJ ET`)

	got := extractText(content)
	assert.Contains(t, got, "Frag")
	assert.Contains(t, got, "mented")
}

func TestExtractText_EscapedParens(t *testing.T) {
	content := []byte(`(a \(nested\) paren) Tj`)

	got := extractText(content)
	assert.Contains(t, got, "(nested) paren")
}

func TestExtractText_Empty(t *testing.T) {
	assert.Equal(t, "", extractText([]byte(`q 1 0 0 1 0 0 cm Q`)))
}

func TestParseLiteral_BalancedParens(t *testing.T) {
	text, next := parseLiteral([]byte(`(outer (inner) rest) Tj`), 0)
	assert.Equal(t, "outer (inner) rest", text)
	assert.Equal(t, 20, next)
}
