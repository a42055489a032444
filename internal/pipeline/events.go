package pipeline

// Stage is a discrete step of the transcription pipeline. The pipeline emits
// a stage-transition event when each step begins; presentation layers decide
// how to render them.
type Stage string

const (
	StageSaving       Stage = "saving"
	StageExtracting   Stage = "extracting"
	StageLoadingModel Stage = "loading_model"
	StageTranscribing Stage = "transcribing"
	StageDone         Stage = "done"
)

var stagePercents = map[Stage]int{
	StageSaving:       10,
	StageExtracting:   30,
	StageLoadingModel: 50,
	StageTranscribing: 70,
	StageDone:         100,
}

var stageLabels = map[Stage]string{
	StageSaving:       "Saving video file...",
	StageExtracting:   "Extracting audio from video...",
	StageLoadingModel: "Loading AI model...",
	StageTranscribing: "Transcribing audio...",
	StageDone:         "Transcription completed!",
}

// Event is one stage transition with its fixed progress percentage.
type Event struct {
	Stage   Stage  `json:"stage"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// NewEvent builds the event for a stage.
func NewEvent(stage Stage) Event {
	return Event{
		Stage:   stage,
		Label:   stageLabels[stage],
		Percent: stagePercents[stage],
	}
}

// ProgressFunc receives stage-transition events during a run.
type ProgressFunc func(Event)
