// Package doctor detects the optional external tools DocAnalyser can use
// and reports install guidance for missing ones. Missing tools degrade
// features rather than breaking the application.
package doctor

import (
	"os/exec"
)

// Tool describes one optional external dependency.
type Tool struct {
	// Name is the binary looked up on PATH.
	Name string

	// Feature names what the tool enables.
	Feature string

	// Fallback describes what happens without it.
	Fallback string

	// Install is a short install hint.
	Install string
}

// Result is the detection outcome for one tool.
type Result struct {
	Tool Tool

	// Found reports whether the binary is on PATH.
	Found bool

	// Path is the resolved binary location when found.
	Path string
}

// tools lists everything worth checking, in report order.
var tools = []Tool{
	{
		Name:     "tesseract",
		Feature:  "local OCR for image ingestion",
		Fallback: "cloud vision via the configured chat provider",
		Install:  "apt install tesseract-ocr / brew install tesseract",
	},
	{
		Name:     "whisper-cli",
		Feature:  "local audio transcription",
		Fallback: "OpenAI transcription API (needs an OpenAI key)",
		Install:  "brew install whisper-cpp or build from ggerganov/whisper.cpp",
	},
	{
		Name:     "ffmpeg",
		Feature:  "audio conversion for transcription",
		Fallback: "only formats the transcriber accepts natively",
		Install:  "apt install ffmpeg / brew install ffmpeg",
	},
	{
		Name:     "yt-dlp",
		Feature:  "downloading podcast/video audio for transcription",
		Fallback: "show notes and captions only",
		Install:  "pip install yt-dlp / brew install yt-dlp",
	},
	{
		Name:     "ollama",
		Feature:  "local chat and embedding models",
		Fallback: "cloud providers only",
		Install:  "https://ollama.com/download",
	},
}

// Doctor runs tool detection.
type Doctor struct {
	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// New creates a doctor using the real PATH lookup.
func New() *Doctor {
	return &Doctor{lookPath: exec.LookPath}
}

// Check detects all known tools.
func (d *Doctor) Check() []Result {
	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		path, err := d.lookPath(tool.Name)
		results = append(results, Result{
			Tool:  tool,
			Found: err == nil,
			Path:  path,
		})
	}
	return results
}

// Has reports whether a single named tool is available.
func (d *Doctor) Has(name string) bool {
	_, err := d.lookPath(name)
	return err == nil
}
