package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

func TestPromptStore_LoadDefault(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Summarise")
	assert.Contains(t, prompt, "%s")
}

func TestPromptStore_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// No I/O before first Load
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	for _, name := range store.Names() {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, "expected default file for %s", name)
	}
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.NoError(t, err)
}

func TestPromptStore_UserOverride(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	custom := "List exactly three takeaways from:\n%s"
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptKeyPoints+".txt"), []byte(custom), 0600))

	prompt, err := store.Load(driven.PromptKeyPoints)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQuestions)
	require.NoError(t, err)

	edited := "Quiz me on:\n%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptQuestions+".txt"), []byte(edited), 0600))

	// Cached value until reload
	cached, err := store.Load(driven.PromptQuestions)
	require.NoError(t, err)
	assert.NotEqual(t, edited, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptQuestions)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}

func TestPromptStore_UnknownName(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}

func TestPromptStore_Names(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	names := store.Names()
	assert.Contains(t, names, driven.PromptChatSystem)
	assert.Contains(t, names, driven.PromptSummary)
	assert.Contains(t, names, driven.PromptKeyPoints)
	assert.Contains(t, names, driven.PromptQuestions)
}
