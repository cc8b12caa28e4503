package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCommand(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
	names := make([]string, 0)
	for _, sub := range settingsCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"show", "wizard", "chat", "embedding"}, names)
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "[Library]")
	assert.Contains(t, out, "Backend: jsonfile")
	assert.Contains(t, out, "Auto-embed on ingest: true")
	assert.Contains(t, out, "[Chat]")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[YouTube]")
	assert.Contains(t, out, "(not set, metadata falls back to oEmbed)")
}

func TestSettingsShow_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := executeCommand("settings", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-1...wxyz", maskAPIKey("sk-1234567890wxyz"))
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 1, parseChoice("", 4, 1))
	assert.Equal(t, 3, parseChoice("3", 4, 1))
	assert.Equal(t, 1, parseChoice("9", 4, 1))
	assert.Equal(t, 1, parseChoice("abc", 4, 1))
}
