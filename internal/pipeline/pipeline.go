// Package pipeline runs the sequential transcription flow: verify upload,
// extract audio, load model, transcribe.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/indictrans/video-transcriber/internal/language"
	"github.com/indictrans/video-transcriber/internal/transcript"
	"github.com/indictrans/video-transcriber/internal/whisper"
	"github.com/indictrans/video-transcriber/pkg/log"
)

// Extractor produces an audio temp file from a video file.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath string, destDir string) (string, error)
}

// ModelLoader hands out cached model instances by size.
type ModelLoader interface {
	Load(ctx context.Context, size whisper.Size) (whisper.Model, error)
}

// Request describes one transcription run. VideoPath is a temp file owned by
// the request; the pipeline deletes it before returning, on every exit path.
type Request struct {
	VideoPath    string
	OriginalName string
	SizeBytes    int64
	Language     language.Entry
	ModelSize    whisper.Size
}

type Pipeline struct {
	extractor Extractor
	loader    ModelLoader
	workDir   string
}

func New(extractor Extractor, loader ModelLoader, workDir string) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		loader:    loader,
		workDir:   workDir,
	}
}

// Run executes the pipeline stages in order, emitting a stage event as each
// begins. On failure the returned result is nil; partial output is never
// produced. All temp files created for the request (the saved video and the
// extracted audio) are deleted before Run returns, whether it succeeds,
// fails, or panics.
func (p *Pipeline) Run(ctx context.Context, req Request, onProgress ProgressFunc) (ret *transcript.Result, err error) {
	emit := func(stage Stage) {
		if onProgress != nil {
			onProgress(NewEvent(stage))
		}
	}

	tempPaths := []string{req.VideoPath}
	defer func() {
		if r := recover(); r != nil {
			ret = nil
			err = NewError(ErrInternal, fmt.Sprintf("runtime error: %v", r))
		}
		for _, path := range tempPaths {
			if path == "" {
				continue
			}
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				log.Warn("Failed to remove temp file %s: %v", path, removeErr)
			}
		}
	}()

	emit(StageSaving)
	info, err := os.Stat(req.VideoPath)
	if err != nil {
		return nil, WrapError(err, ErrInternal, "saved video is not readable")
	}
	log.Info("Transcribing %s (%d bytes) language=%s model=%s",
		req.OriginalName, info.Size(), req.Language.Code, req.ModelSize)

	emit(StageExtracting)
	audioPath, err := p.extractor.ExtractAudio(ctx, req.VideoPath, p.workDir)
	if err != nil {
		return nil, WrapError(err, ErrExtraction, "error extracting audio")
	}
	tempPaths = append(tempPaths, audioPath)

	emit(StageLoadingModel)
	model, err := p.loader.Load(ctx, req.ModelSize)
	if err != nil {
		return nil, WrapError(err, ErrModelLoad, "error loading model")
	}

	emit(StageTranscribing)
	result, err := model.Transcribe(ctx, audioPath, req.Language.Code)
	if err != nil {
		return nil, WrapError(err, ErrTranscription, "error during transcription")
	}
	if result == nil {
		return nil, NewError(ErrTranscription, "model returned no result")
	}

	if !transcript.MatchesLanguage(result, req.Language.Code) {
		log.Warn("Detected language %q differs from requested %q for %s",
			transcript.DetectedCode(result), req.Language.Code, req.OriginalName)
	}

	emit(StageDone)
	return result, nil
}
