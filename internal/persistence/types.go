package persistence

import (
	"time"

	"github.com/indictrans/video-transcriber/internal/transcript"
)

// TranscriptRecord is a finished transcription stored for a job: the full
// text, both rendered download artifacts, and the raw segments.
type TranscriptRecord struct {
	JobID        string
	LanguageCode string
	LanguageName string
	Text         string
	SRT          string
	Segments     []transcript.Segment
	UpdatedAt    time.Time
}
