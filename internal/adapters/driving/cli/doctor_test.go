package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCommand(t *testing.T) {
	assert.Equal(t, "doctor", doctorCmd.Use)
	assert.Equal(t, "Check optional external tools", doctorCmd.Short)
}

func TestDoctorCommand_ReportsTools(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Optional tools:")
	// Every known tool appears either as found or missing.
	for _, name := range []string{"tesseract", "whisper-cli", "ffmpeg", "yt-dlp", "ollama"} {
		assert.Contains(t, out, name)
	}
}

func TestDoctorCommand_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	toolDoctor = nil

	_, err := executeCommand("doctor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor not configured")
}
