package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/indictrans/video-transcriber/internal/config"
	"github.com/indictrans/video-transcriber/internal/httpapi"
	"github.com/indictrans/video-transcriber/internal/jobs"
	"github.com/indictrans/video-transcriber/internal/language"
	"github.com/indictrans/video-transcriber/internal/media"
	"github.com/indictrans/video-transcriber/internal/persistence"
	"github.com/indictrans/video-transcriber/internal/pipeline"
	"github.com/indictrans/video-transcriber/internal/transcript"
	"github.com/indictrans/video-transcriber/internal/upload"
	"github.com/indictrans/video-transcriber/internal/whisper"
	"github.com/indictrans/video-transcriber/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal("Service failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := persistence.NewSQLiteStore(cfg.Jobs.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	uploads, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}

	loader := whisper.NewLoader(func(size whisper.Size) (whisper.Model, error) {
		return whisper.NewCLIModel(cfg.Whisper.Binary, cfg.Whisper.ModelDir, size), nil
	}, cfg.Whisper.CacheCapacity)
	pl := pipeline.New(media.NewExtractor(), loader, uploads.Dir())

	queue := jobs.NewQueue(cfg.Jobs.Workers, store)
	queue.Start(newExecutor(pl, queue, store))
	defer queue.Stop()

	srv := httpapi.NewServer(uploads, queue,
		httpapi.WithUI(cfg.HTTP.UIStaticDir, cfg.HTTP.UIEnabled),
		httpapi.WithTranscriptStore(store),
	)

	cronEngine := cron.New()
	sweeper := newSweepScheduler(cronEngine, uploads, queue, cfg.Upload)
	return runWithComponents(ctx, cfg, sweeper, cronEngine, srv)
}

// newExecutor builds the queue worker: run the pipeline for a job, mirror its
// stage events onto the job record, and persist the artifacts on success.
func newExecutor(pl *pipeline.Pipeline, queue *jobs.Queue, store *persistence.SQLiteStore) jobs.Executor {
	return func(ctx context.Context, job *jobs.TranscriptionJob) error {
		entry, err := language.ByCode(job.Payload.LanguageCode)
		if err != nil {
			return err
		}
		size, err := whisper.ParseSize(job.Payload.ModelSize)
		if err != nil {
			return err
		}

		result, err := pl.Run(ctx, pipeline.Request{
			VideoPath:    job.Payload.VideoPath,
			OriginalName: job.Payload.OriginalName,
			SizeBytes:    job.Payload.SizeBytes,
			Language:     entry,
			ModelSize:    size,
		}, func(event pipeline.Event) {
			queue.UpdateProgress(job.ID, jobs.Progress{
				Stage:   string(event.Stage),
				Label:   event.Label,
				Percent: event.Percent,
			})
		})
		if err != nil {
			return err
		}

		return store.SaveTranscript(ctx, persistence.TranscriptRecord{
			JobID:        job.ID,
			LanguageCode: entry.Code,
			LanguageName: entry.Name,
			Text:         result.Text,
			SRT:          transcript.RenderSRT(result),
			Segments:     result.Segments,
		})
	}
}

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

// sweepScheduler registers the periodic stale-upload sweep on the cron
// engine. Videos owned by pending or running transcription jobs are excluded
// from the sweep; their lifecycle belongs to the pipeline.
type sweepScheduler struct {
	cron    *cron.Cron
	uploads *upload.Store
	queue   *jobs.Queue
	cfg     config.UploadConfig
}

func newSweepScheduler(c *cron.Cron, uploads *upload.Store, queue *jobs.Queue, cfg config.UploadConfig) *sweepScheduler {
	return &sweepScheduler{cron: c, uploads: uploads, queue: queue, cfg: cfg}
}

func (s *sweepScheduler) Schedule(_ context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.SweepCron, func() {
		if _, err := s.uploads.Sweep(s.cfg.TTL, s.queue.ActiveVideoPaths()); err != nil {
			log.Error("Stale upload sweep failed: %v", err)
		}
	})
	return err
}

func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, cronEng cronEngine, httpSrv httpServer) error {
	if err := sched.Schedule(ctx); err != nil {
		return err
	}
	cronEng.Start()
	defer cronEng.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
