package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/indictrans/video-transcriber/internal/jobs"
	"github.com/indictrans/video-transcriber/internal/transcript"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.TranscriptionJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, video_path, file_name, size_bytes,
			language_code, language_name, model_size, status,
			progress_stage, progress_label, progress_percent,
			error, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.TranscriptionJob, 0)
	for rows.Next() {
		var item jobs.TranscriptionJob
		var status string
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.VideoPath,
			&item.Payload.OriginalName,
			&item.Payload.SizeBytes,
			&item.Payload.LanguageCode,
			&item.Payload.LanguageName,
			&item.Payload.ModelSize,
			&status,
			&item.Progress.Stage,
			&item.Progress.Label,
			&item.Progress.Percent,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.TranscriptionJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, source, dedupe_key, video_path, file_name, size_bytes,
			language_code, language_name, model_size, status,
			progress_stage, progress_label, progress_percent,
			error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			video_path=excluded.video_path,
			file_name=excluded.file_name,
			size_bytes=excluded.size_bytes,
			language_code=excluded.language_code,
			language_name=excluded.language_name,
			model_size=excluded.model_size,
			status=excluded.status,
			progress_stage=excluded.progress_stage,
			progress_label=excluded.progress_label,
			progress_percent=excluded.progress_percent,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.VideoPath,
		job.Payload.OriginalName,
		job.Payload.SizeBytes,
		job.Payload.LanguageCode,
		job.Payload.LanguageName,
		job.Payload.ModelSize,
		string(job.Status),
		job.Progress.Stage,
		job.Progress.Label,
		job.Progress.Percent,
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

// DeleteJobData removes the stored transcript of a job.
func (s *SQLiteStore) DeleteJobData(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE job_id = ?`, jobID)
	return err
}

func (s *SQLiteStore) SaveTranscript(ctx context.Context, record TranscriptRecord) error {
	segmentsJSON, err := json.Marshal(record.Segments)
	if err != nil {
		return err
	}
	updatedAt := record.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (
			job_id, language_code, language_name, full_text, srt_content, segments_json, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			language_code=excluded.language_code,
			language_name=excluded.language_name,
			full_text=excluded.full_text,
			srt_content=excluded.srt_content,
			segments_json=excluded.segments_json,
			updated_at=excluded.updated_at`,
		record.JobID,
		record.LanguageCode,
		record.LanguageName,
		record.Text,
		record.SRT,
		string(segmentsJSON),
		updatedAt,
	)
	return err
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, jobID string) (TranscriptRecord, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT job_id, language_code, language_name, full_text, srt_content, segments_json, updated_at
		 FROM transcripts
		 WHERE job_id = ?`,
		jobID,
	)

	var record TranscriptRecord
	var segmentsJSON string
	if err := row.Scan(
		&record.JobID,
		&record.LanguageCode,
		&record.LanguageName,
		&record.Text,
		&record.SRT,
		&segmentsJSON,
		&record.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return TranscriptRecord{}, false, nil
		}
		return TranscriptRecord{}, false, err
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &record.Segments); err != nil {
		return TranscriptRecord{}, false, err
	}
	if record.Segments == nil {
		record.Segments = []transcript.Segment{}
	}
	return record, true, nil
}
