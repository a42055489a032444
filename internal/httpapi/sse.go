package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/indictrans/video-transcriber/internal/jobs"
)

// jobEvent is the stream view of a transcription job: identity, status, and
// the pipeline's latest stage flattened in, so the UI can drive its progress
// bar straight off one event.
type jobEvent struct {
	ID        string      `json:"id"`
	Status    jobs.Status `json:"status"`
	FileName  string      `json:"file_name"`
	Language  string      `json:"language"`
	ModelSize string      `json:"model_size"`
	Stage     string      `json:"stage,omitempty"`
	Label     string      `json:"label,omitempty"`
	Percent   int         `json:"percent"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// jobEvents snapshots the queue in creation order. Deterministic ordering
// lets the stream handler compare consecutive snapshots byte for byte.
func (s *Server) jobEvents() []jobEvent {
	jobList := s.queue.List()
	sort.Slice(jobList, func(i, j int) bool {
		if jobList[i].CreatedAt.Equal(jobList[j].CreatedAt) {
			return jobList[i].ID < jobList[j].ID
		}
		return jobList[i].CreatedAt.Before(jobList[j].CreatedAt)
	})

	ret := make([]jobEvent, 0, len(jobList))
	for _, job := range jobList {
		ret = append(ret, jobEvent{
			ID:        job.ID,
			Status:    job.Status,
			FileName:  job.Payload.OriginalName,
			Language:  job.Payload.LanguageName,
			ModelSize: job.Payload.ModelSize,
			Stage:     job.Progress.Stage,
			Label:     job.Progress.Label,
			Percent:   job.Progress.Percent,
			Error:     job.Error,
			UpdatedAt: job.UpdatedAt,
		})
	}
	return ret
}

// handleJobStream pushes job snapshots over SSE. The queue is polled, but a
// frame goes out only when some job's status or stage actually changed since
// the previous frame, so idle streams stay quiet between transitions.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var last []byte
	send := func() bool {
		payload, err := json.Marshal(s.jobEvents())
		if err != nil {
			return false
		}
		if bytes.Equal(payload, last) {
			return true
		}
		last = payload
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}
