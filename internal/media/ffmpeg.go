// Package media wraps ffmpeg/ffprobe for audio extraction from uploaded
// videos.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/indictrans/video-transcriber/pkg/file"
	"github.com/indictrans/video-transcriber/pkg/log"
)

// Extractor decodes the audio track of a video container into a mono 16kHz
// WAV file suitable for speech recognition.
type Extractor struct {
	ffmpegCmd  string
	ffprobeCmd string

	// run executes a command and returns its combined output. Overridable in
	// tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
	// capture executes a command and returns stdout only.
	capture func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewExtractor() *Extractor {
	return &Extractor{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
		capture: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// HasAudioStream probes the container and reports whether it carries at least
// one audio stream.
func (ex *Extractor) HasAudioStream(ctx context.Context, videoPath string) (bool, error) {
	output, err := ex.capture(ctx, ex.ffprobeCmd, ex.probeArgs(videoPath)...)
	if err != nil {
		log.Error("Failed to run ffprobe on %s: %v", videoPath, err)
		return false, fmt.Errorf("probe video: %w", err)
	}

	var probeResult struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			CodecName string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		log.Error("Failed to parse ffprobe output: %v", err)
		return false, fmt.Errorf("parse probe output: %w", err)
	}

	for _, stream := range probeResult.Streams {
		if stream.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

// ExtractAudio writes the video's audio track to a new temporary WAV file in
// destDir and returns its path. On any failure the temporary file is removed
// and no path is returned.
func (ex *Extractor) ExtractAudio(ctx context.Context, videoPath string, destDir string) (string, error) {
	if destDir == "" {
		destDir = os.TempDir()
	}

	base := file.ReplaceExt(filepath.Base(videoPath), "")
	tmp, err := os.CreateTemp(destDir, base+"_audio_*.wav")
	if err != nil {
		return "", fmt.Errorf("create audio temp file: %w", err)
	}
	audioPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(audioPath)
		return "", fmt.Errorf("close audio temp file: %w", err)
	}

	hasAudio, err := ex.HasAudioStream(ctx, videoPath)
	if err != nil {
		_ = os.Remove(audioPath)
		return "", err
	}
	if !hasAudio {
		_ = os.Remove(audioPath)
		return "", fmt.Errorf("video has no audio track: %s", filepath.Base(videoPath))
	}

	if output, err := ex.run(ctx, ex.ffmpegCmd, ex.extractArgs(videoPath, audioPath)...); err != nil {
		_ = os.Remove(audioPath)
		return "", fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return audioPath, nil
}

func (ex *Extractor) probeArgs(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a",
		path,
	}
}

func (ex *Extractor) extractArgs(videoPath, audioPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		audioPath,
	}
}
