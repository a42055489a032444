package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/indictrans/video-transcriber/internal/jobs"
	"github.com/indictrans/video-transcriber/internal/language"
	"github.com/indictrans/video-transcriber/internal/transcript"
	"github.com/indictrans/video-transcriber/internal/upload"
	"github.com/indictrans/video-transcriber/internal/whisper"
)

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	up, err := s.uploads.Save(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		Upload: up,
		SizeMB: up.SizeMB(),
	})
}

type uploadResponse struct {
	*upload.Upload
	SizeMB float64 `json:"size_mb"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, language.Supported)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sizes":   whisper.Sizes,
		"default": whisper.SizeTiny,
	})
}

type createJobRequest struct {
	Source    string `json:"source"`
	UploadID  string `json:"upload_id"`
	Language  string `json:"language"`
	ModelSize string `json:"model_size"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.List())
	case http.MethodPost:
		var req createJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Source == "" {
			req.Source = "web"
		}
		if req.UploadID == "" {
			writeError(w, http.StatusBadRequest, "upload_id is required")
			return
		}

		entry, err := language.ByName(req.Language)
		if err != nil {
			if entry, err = language.ByCode(req.Language); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		size, err := whisper.ParseSize(req.ModelSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		up, ok := s.uploads.Get(req.UploadID)
		if !ok {
			if s.uploads.Claimed(req.UploadID) {
				writeError(w, http.StatusConflict, "upload is already attached to a job")
				return
			}
			writeError(w, http.StatusNotFound, "unknown upload id")
			return
		}

		// the job owns the video file from here on; claiming before the
		// enqueue guarantees two jobs never share one upload
		if _, ok := s.uploads.Claim(up.ID); !ok {
			writeError(w, http.StatusConflict, "upload is already attached to a job")
			return
		}

		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    req.Source,
			DedupeKey: fmt.Sprintf("%s|%s|%s", up.ID, entry.Code, size),
			Payload: jobs.JobPayload{
				VideoPath:    up.Path,
				OriginalName: up.OriginalName,
				SizeBytes:    up.SizeBytes,
				LanguageCode: entry.Code,
				LanguageName: entry.Name,
				ModelSize:    string(size),
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// /api/jobs/{id}[/download/{text|srt}]
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	jobID, suffix, _ := strings.Cut(rest, "/")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}

	switch suffix {
	case "":
		s.writeJobDetail(w, r, jobID)
	case "download/text":
		s.writeArtifact(w, r, jobID, artifactText)
	case "download/srt":
		s.writeArtifact(w, r, jobID, artifactSRT)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type jobDetailResponse struct {
	Job        *jobs.TranscriptionJob `json:"job"`
	Transcript *transcriptResponse    `json:"transcript,omitempty"`
}

type transcriptResponse struct {
	Language     string                `json:"language"`
	LanguageCode string                `json:"language_code"`
	Text         string                `json:"text"`
	Segments     []transcript.TableRow `json:"segments"`
	TextFileName string                `json:"text_file_name"`
	SRTFileName  string                `json:"srt_file_name"`
}

func (s *Server) writeJobDetail(w http.ResponseWriter, r *http.Request, jobID string) {
	job, ok := s.queue.Get(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job id")
		return
	}

	resp := jobDetailResponse{Job: job}
	if job.Status == jobs.StatusSuccess && s.transcripts != nil {
		record, found, err := s.transcripts.GetTranscript(r.Context(), jobID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if found {
			result := &transcript.Result{
				Text:     record.Text,
				Language: record.LanguageCode,
				Segments: record.Segments,
			}
			resp.Transcript = &transcriptResponse{
				Language:     record.LanguageName,
				LanguageCode: record.LanguageCode,
				Text:         record.Text,
				Segments:     transcript.TableRows(result),
				TextFileName: transcript.TextFileName(record.LanguageName),
				SRTFileName:  transcript.SRTFileName(record.LanguageName),
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type artifactKind int

const (
	artifactText artifactKind = iota
	artifactSRT
)

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, jobID string, kind artifactKind) {
	if s.transcripts == nil {
		writeError(w, http.StatusNotImplemented, "transcript store is not configured")
		return
	}
	record, found, err := s.transcripts.GetTranscript(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no transcript for job")
		return
	}

	name := transcript.TextFileName(record.LanguageName)
	body := record.Text
	if kind == artifactSRT {
		name = transcript.SRTFileName(record.LanguageName)
		body = record.SRT
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
