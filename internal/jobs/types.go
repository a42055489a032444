package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
}

// JobPayload carries everything the executor needs to run one transcription.
type JobPayload struct {
	VideoPath    string `json:"video_path"`
	OriginalName string `json:"file_name"`
	SizeBytes    int64  `json:"size_bytes"`
	LanguageCode string `json:"language"`
	LanguageName string `json:"language_name"`
	ModelSize    string `json:"model_size"`
}

// Progress mirrors the pipeline's latest stage event onto the job record.
type Progress struct {
	Stage   string `json:"stage,omitempty"`
	Label   string `json:"label,omitempty"`
	Percent int    `json:"percent"`
}

type TranscriptionJob struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Progress  Progress   `json:"progress"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
