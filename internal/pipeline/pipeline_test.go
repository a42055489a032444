package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indictrans/video-transcriber/internal/language"
	"github.com/indictrans/video-transcriber/internal/transcript"
	"github.com/indictrans/video-transcriber/internal/whisper"
)

type fakeExtractor struct {
	audioPath string
	err       error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _ string, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.audioPath, nil
}

type fakeModel struct {
	size   whisper.Size
	result *transcript.Result
	err    error
	panics bool
}

func (f *fakeModel) Size() whisper.Size { return f.size }

func (f *fakeModel) Transcribe(context.Context, string, string) (*transcript.Result, error) {
	if f.panics {
		panic("inference crashed")
	}
	return f.result, f.err
}

type fakeLoader struct {
	model whisper.Model
	err   error
}

func (f *fakeLoader) Load(context.Context, whisper.Size) (whisper.Model, error) {
	return f.model, f.err
}

func writeTempVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "upload.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video-bytes"), 0o644))
	return path
}

func writeTempAudio(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "upload_audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o644))
	return path
}

func newRequest(videoPath string) Request {
	hindi, _ := language.ByName("Hindi")
	return Request{
		VideoPath:    videoPath,
		OriginalName: "upload.mp4",
		SizeBytes:    11,
		Language:     hindi,
		ModelSize:    whisper.SizeTiny,
	}
}

func TestPipeline_Run_Success(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)
	audioPath := writeTempAudio(t, tmp)

	wantResult := &transcript.Result{
		Text: "नमस्ते",
		Segments: []transcript.Segment{
			{Start: 0, End: 2, Text: "नमस्ते"},
		},
	}
	p := New(
		&fakeExtractor{audioPath: audioPath},
		&fakeLoader{model: &fakeModel{size: whisper.SizeTiny, result: wantResult}},
		tmp,
	)

	var events []Event
	result, err := p.Run(context.Background(), newRequest(videoPath), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	require.Equal(t, wantResult, result)

	stages := make([]Stage, 0, len(events))
	percents := make([]int, 0, len(events))
	for _, e := range events {
		stages = append(stages, e.Stage)
		percents = append(percents, e.Percent)
	}
	assert.Equal(t, []Stage{StageSaving, StageExtracting, StageLoadingModel, StageTranscribing, StageDone}, stages)
	assert.Equal(t, []int{10, 30, 50, 70, 100}, percents)

	assert.NoFileExists(t, videoPath)
	assert.NoFileExists(t, audioPath)
}

func TestPipeline_Run_ExtractionFailure(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)

	p := New(
		&fakeExtractor{err: errors.New("no audio track")},
		&fakeLoader{model: &fakeModel{}},
		tmp,
	)

	var events []Event
	result, err := p.Run(context.Background(), newRequest(videoPath), func(e Event) {
		events = append(events, e)
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrExtraction))

	// pipeline stopped at the extracting stage; Done never emitted
	require.NotEmpty(t, events)
	assert.Equal(t, StageExtracting, events[len(events)-1].Stage)

	assert.NoFileExists(t, videoPath)
}

func TestPipeline_Run_ModelLoadFailure(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)
	audioPath := writeTempAudio(t, tmp)

	p := New(
		&fakeExtractor{audioPath: audioPath},
		&fakeLoader{err: errors.New("unknown size")},
		tmp,
	)

	result, err := p.Run(context.Background(), newRequest(videoPath), nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrModelLoad))

	assert.NoFileExists(t, videoPath)
	assert.NoFileExists(t, audioPath)
}

func TestPipeline_Run_TranscriptionFailureCleansAllTempFiles(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)
	audioPath := writeTempAudio(t, tmp)

	p := New(
		&fakeExtractor{audioPath: audioPath},
		&fakeLoader{model: &fakeModel{err: errors.New("inference failed")}},
		tmp,
	)

	var events []Event
	result, err := p.Run(context.Background(), newRequest(videoPath), func(e Event) {
		events = append(events, e)
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrTranscription))

	assert.Equal(t, StageTranscribing, events[len(events)-1].Stage)
	assert.NoFileExists(t, videoPath)
	assert.NoFileExists(t, audioPath)
}

func TestPipeline_Run_NilResultIsTranscriptionFailure(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)
	audioPath := writeTempAudio(t, tmp)

	p := New(
		&fakeExtractor{audioPath: audioPath},
		&fakeLoader{model: &fakeModel{result: nil}},
		tmp,
	)

	result, err := p.Run(context.Background(), newRequest(videoPath), nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrTranscription))
}

func TestPipeline_Run_PanicBecomesInternalErrorAndCleansUp(t *testing.T) {
	tmp := t.TempDir()
	videoPath := writeTempVideo(t, tmp)
	audioPath := writeTempAudio(t, tmp)

	p := New(
		&fakeExtractor{audioPath: audioPath},
		&fakeLoader{model: &fakeModel{panics: true}},
		tmp,
	)

	result, err := p.Run(context.Background(), newRequest(videoPath), nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrInternal))
	assert.Contains(t, err.Error(), "inference crashed")

	assert.NoFileExists(t, videoPath)
	assert.NoFileExists(t, audioPath)
}

func TestPipeline_Run_MissingVideo(t *testing.T) {
	tmp := t.TempDir()

	p := New(&fakeExtractor{}, &fakeLoader{model: &fakeModel{}}, tmp)

	req := newRequest(filepath.Join(tmp, "gone.mp4"))
	result, err := p.Run(context.Background(), req, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsKind(err, ErrInternal))
}
