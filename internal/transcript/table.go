package transcript

import (
	"fmt"
	"strings"
)

// TableRow is one human-readable line of the segment table shown in the UI.
type TableRow struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// RangeLabel formats a segment time range as "MM:SS - MM:SS".
func RangeLabel(segment Segment) string {
	return fmt.Sprintf("%s - %s", shortClock(segment.Start), shortClock(segment.End))
}

// TableRows builds the display table for a result, one row per segment with
// trimmed text.
func TableRows(result *Result) []TableRow {
	if result == nil {
		return nil
	}

	rows := make([]TableRow, 0, len(result.Segments))
	for _, segment := range result.Segments {
		rows = append(rows, TableRow{
			Time: RangeLabel(segment),
			Text: strings.TrimSpace(segment.Text),
		})
	}
	return rows
}

func shortClock(seconds float64) string {
	return fmt.Sprintf("%02d:%02d", int(seconds)/60, int(seconds)%60)
}
