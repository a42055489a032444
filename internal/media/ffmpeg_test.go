package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeWithAudio = `{"streams":[{"codec_type":"audio","codec_name":"aac"}]}`
const probeVideoOnly = `{"streams":[{"codec_type":"video","codec_name":"h264"}]}`

func TestExtractor_HasAudioStream(t *testing.T) {
	ex := NewExtractor()
	ex.capture = func(_ context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "ffprobe", name)
		assert.Contains(t, args, "-select_streams")
		return []byte(probeWithAudio), nil
	}

	ok, err := ex.HasAudioStream(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)
	assert.True(t, ok)

	ex.capture = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeVideoOnly), nil
	}
	ok, err = ex.HasAudioStream(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractor_ExtractAudio_WritesWav(t *testing.T) {
	tmp := t.TempDir()

	ex := NewExtractor()
	ex.capture = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeWithAudio), nil
	}
	var gotArgs []string
	ex.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "ffmpeg", name)
		gotArgs = args
		return nil, nil
	}

	audioPath, err := ex.ExtractAudio(context.Background(), "/videos/talk.mp4", tmp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(audioPath), "talk_audio_"))
	assert.True(t, strings.HasSuffix(audioPath, ".wav"))

	// extraction output path is the last argument
	require.NotEmpty(t, gotArgs)
	assert.Equal(t, audioPath, gotArgs[len(gotArgs)-1])
	assert.Contains(t, gotArgs, "-vn")

	_, err = os.Stat(audioPath)
	require.NoError(t, err)
}

func TestExtractor_ExtractAudio_NoAudioTrack(t *testing.T) {
	tmp := t.TempDir()

	ex := NewExtractor()
	ex.capture = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeVideoOnly), nil
	}
	ex.run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		t.Fatal("ffmpeg must not run for a video without audio")
		return nil, nil
	}

	audioPath, err := ex.ExtractAudio(context.Background(), "/videos/silent.mp4", tmp)
	require.Error(t, err)
	assert.Empty(t, audioPath)
	assert.Contains(t, err.Error(), "no audio track")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed extraction must not leave temp files")
}

func TestExtractor_ExtractAudio_FfmpegFailureCleansUp(t *testing.T) {
	tmp := t.TempDir()

	ex := NewExtractor()
	ex.capture = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeWithAudio), nil
	}
	ex.run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("corrupt container"), errors.New("exit status 1")
	}

	audioPath, err := ex.ExtractAudio(context.Background(), "/videos/broken.mkv", tmp)
	require.Error(t, err)
	assert.Empty(t, audioPath)
	assert.Contains(t, err.Error(), "corrupt container")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
