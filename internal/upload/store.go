// Package upload accepts browser video uploads into a managed temp directory.
package upload

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indictrans/video-transcriber/pkg/file"
	"github.com/indictrans/video-transcriber/pkg/log"
)

// allowedExtensions is the fixed set of accepted video container extensions.
// Container validity is not checked here; malformed files fail in the audio
// extractor.
var allowedExtensions = []string{"mp4", "avi", "mov", "mkv", "wmv", "flv", "webm"}

// AllowedExtension reports whether the filename carries an accepted video
// extension.
func AllowedExtension(name string) bool {
	return slices.Contains(allowedExtensions, file.Ext(name))
}

// AllowedExtensions returns the accept list for UI display.
func AllowedExtensions() []string {
	return slices.Clone(allowedExtensions)
}

// Upload is one received video, saved to a temp file pending transcription.
type Upload struct {
	ID           string    `json:"id"`
	Path         string    `json:"-"`
	OriginalName string    `json:"file_name"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// SizeMB returns the upload size in megabytes, as shown in the UI.
func (u *Upload) SizeMB() float64 {
	return float64(u.SizeBytes) / (1024 * 1024)
}

// Store saves uploads into dir and tracks them until a job claims ownership.
type Store struct {
	dir      string
	maxBytes int64

	idCounter uint64

	mu      sync.Mutex
	uploads map[string]*Upload
	claimed map[string]bool
}

// NewStore creates the upload directory if needed. maxBytes <= 0 disables the
// size cap.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		uploads:  make(map[string]*Upload),
		claimed:  make(map[string]bool),
	}, nil
}

// Dir returns the managed upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the payload to a new temp file. The original filename must
// carry an allowed video extension.
func (s *Store) Save(r io.Reader, originalName string) (*Upload, error) {
	if !AllowedExtension(originalName) {
		return nil, fmt.Errorf("unsupported file type %q: allowed extensions are %s",
			file.Ext(originalName), strings.Join(allowedExtensions, ", "))
	}

	tmp, err := os.CreateTemp(s.dir, "upload_*."+file.Ext(originalName))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	reader := r
	if s.maxBytes > 0 {
		reader = io.LimitReader(r, s.maxBytes+1)
	}
	written, err := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("upload exceeds the %d byte limit", s.maxBytes)
	}

	up := &Upload{
		ID:           fmt.Sprintf("upload-%d", atomic.AddUint64(&s.idCounter, 1)),
		Path:         tmp.Name(),
		OriginalName: originalName,
		SizeBytes:    written,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	s.uploads[up.ID] = up
	s.mu.Unlock()

	return up, nil
}

// Get returns an upload by id without transferring ownership.
func (s *Store) Get(id string) (*Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[id]
	return up, ok
}

// Claim hands the upload's file over to the caller and forgets the entry.
// After a claim the caller is responsible for deleting the file. Each upload
// can be claimed exactly once.
func (s *Store) Claim(id string) (*Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[id]
	if ok {
		delete(s.uploads, id)
		s.claimed[id] = true
	}
	return up, ok
}

// Claimed reports whether the upload was already handed over to a job.
func (s *Store) Claimed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimed[id]
}

// Remove deletes an unclaimed upload and its file.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	up, ok := s.uploads[id]
	if ok {
		delete(s.uploads, id)
	}
	s.mu.Unlock()

	if ok {
		if err := os.Remove(up.Path); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove upload %s: %v", up.Path, err)
		}
	}
}

// Sweep deletes files in the upload directory older than ttl, catching
// anything left behind by crashed or abandoned requests. Paths in keep are
// skipped: claimed videos stay on disk until their job's pipeline deletes
// them, so files owned by pending or running jobs must survive the sweep.
func (s *Store) Sweep(ttl time.Duration, keep map[string]bool) (int, error) {
	stale, err := file.FindOlderThan(s.dir, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("scan upload dir: %w", err)
	}

	removed := 0
	for _, path := range stale {
		if keep[path] {
			continue
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				log.Warn("Failed to sweep stale file %s: %v", path, err)
			}
			continue
		}
		removed++
	}

	s.mu.Lock()
	for id, up := range s.uploads {
		if _, err := os.Stat(up.Path); os.IsNotExist(err) {
			delete(s.uploads, id)
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		log.Info("Swept %d stale upload files from %s", removed, s.dir)
	}
	return removed, nil
}
