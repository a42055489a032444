package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/indictrans/video-transcriber/internal/transcript"
	"github.com/indictrans/video-transcriber/pkg/file"
	"github.com/indictrans/video-transcriber/pkg/log"
)

// CLIModel shells out to the whisper command line tool. Each call writes a
// JSON result next to a per-call temp directory, which is removed before
// returning.
type CLIModel struct {
	command  string
	modelDir string
	size     Size

	// run executes a command and returns its combined output. Overridable in
	// tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCLIModel builds a model backed by the given whisper binary. modelDir is
// where the tool caches downloaded weights; empty means the tool's default.
func NewCLIModel(command string, modelDir string, size Size) *CLIModel {
	if command == "" {
		command = "whisper"
	}
	return &CLIModel{
		command:  command,
		modelDir: modelDir,
		size:     size,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

func (m *CLIModel) Size() Size {
	return m.size
}

// cliResult mirrors the JSON document the whisper tool writes with
// --output_format json.
type cliResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (m *CLIModel) Transcribe(ctx context.Context, audioPath string, code string) (*transcript.Result, error) {
	outDir, err := os.MkdirTemp("", "whisper_out_")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := m.transcribeArgs(audioPath, code, outDir)
	log.Debug("Running %s %s", m.command, strings.Join(args, " "))

	if output, err := m.run(ctx, m.command, args...); err != nil {
		return nil, fmt.Errorf("whisper run: %w: %s", err, strings.TrimSpace(string(output)))
	}

	resultPath := filepath.Join(outDir, file.ReplaceExt(filepath.Base(audioPath), ".json"))
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper result: %w", err)
	}

	var parsed cliResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse whisper result: %w", err)
	}

	result := &transcript.Result{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
	}
	for _, segment := range parsed.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}
	return result, nil
}

func (m *CLIModel) transcribeArgs(audioPath, code, outDir string) []string {
	args := []string{
		audioPath,
		"--model", string(m.size),
		"--language", code,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if m.modelDir != "" {
		args = append(args, "--model_dir", m.modelDir)
	}
	return args
}
