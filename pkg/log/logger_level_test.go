package log

import (
	"bytes"
	stdlog "log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LogLevel
	}{
		{name: "debug lower", input: "debug", want: LevelDebug},
		{name: "info upper", input: "INFO", want: LevelInfo},
		{name: "warn mixed", input: "WaRn", want: LevelWarn},
		{name: "error", input: "error", want: LevelError},
		{name: "fatal", input: "fatal", want: LevelFatal},
		{name: "trim spaces", input: "  debug  ", want: LevelDebug},
		{name: "unknown fallback", input: "verbose", want: LevelInfo},
		{name: "empty fallback", input: "", want: LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func captureLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(level)
	logger.logger = stdlog.New(&buf, "", 0)
	return logger, &buf
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	logger, buf := captureLogger(LevelWarn)

	logger.Debug("probing ffmpeg at %s", "/usr/bin/ffmpeg")
	logger.Info("Transcription job %s enqueued", "job-1")
	logger.Warn("Whisper model %s evicted from cache", "medium")
	logger.Error("Audio extraction failed for %s", "lecture.mp4")

	out := buf.String()
	assert.NotContains(t, out, "probing ffmpeg")
	assert.NotContains(t, out, "enqueued")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "Whisper model medium evicted from cache")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "Audio extraction failed for lecture.mp4")
}

func TestLogger_SetLevelTakesEffect(t *testing.T) {
	logger, buf := captureLogger(LevelError)

	logger.Info("Sweeping stale uploads")
	assert.Empty(t, buf.String())

	logger.SetLevel(LevelDebug)
	logger.Info("Sweeping stale uploads")
	assert.Contains(t, buf.String(), "Sweeping stale uploads")
}

func TestLogger_EntryCarriesLevelAndCaller(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	logger.Info("Transcribing %s to %s", "talk.mkv", "Hindi")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "logger_level_test.go")
	assert.Contains(t, out, "Transcribing talk.mkv to Hindi")
}

func TestFileLogger_WritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "transcriber.log")

	logger, err := NewFileLogger(path, LevelInfo)
	require.NoError(t, err)

	logger.Info("Loaded Whisper model %s", "tiny")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Loaded Whisper model tiny")
}
