package transcript

// Segment is a contiguous span of transcribed speech with start and end times
// in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result represents one finished transcription: the full text plus the
// timestamped segments. Segments arrive from the model ordered by start time
// and non-overlapping; that contract is trusted, not re-validated here.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}
