package whisper

import (
	"context"

	"github.com/indictrans/video-transcriber/internal/transcript"
)

// Model is a ready-to-use speech recognition model instance.
type Model interface {
	// Transcribe runs inference over the audio file with the language hint
	// pinned to code. Auto-detection is never used.
	Transcribe(ctx context.Context, audioPath string, code string) (*transcript.Result, error)

	// Size returns the model tier this instance was loaded for.
	Size() Size
}
