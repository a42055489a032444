package transcript

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimeSRT formats seconds as an SRT timestamp (HH:MM:SS,mmm). The SRT
// standard uses a comma as the millisecond separator.
func FormatTimeSRT(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)

	return strings.Replace(fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs), ".", ",", 1)
}

// RenderSRT renders the result's segments as SRT subtitle content: for each
// segment a 1-based sequence number, a time range, the trimmed text, and a
// blank line separator.
func RenderSRT(result *Result) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range result.Segments {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatTimeSRT(segment.Start), FormatTimeSRT(segment.End))
		fmt.Fprintf(&sb, "%s\n\n", strings.TrimSpace(segment.Text))
	}
	return sb.String()
}

// SRTFileName returns the download name for the SRT artifact of the given
// language display name.
func SRTFileName(languageName string) string {
	return fmt.Sprintf("subtitles_%s.srt", strings.ToLower(languageName))
}

// TextFileName returns the download name for the plain-text artifact of the
// given language display name.
func TextFileName(languageName string) string {
	return fmt.Sprintf("transcription_%s.txt", strings.ToLower(languageName))
}
