package transcript

import (
	"github.com/abadojack/whatlanggo"
)

// DetectedCode runs lightweight language detection over the result text and
// returns the ISO 639-1 code of the dominant language, or "" when the text is
// too short to classify.
func DetectedCode(result *Result) string {
	if result == nil || len(result.Segments) == 0 {
		return ""
	}

	langCount := make(map[string]int)
	for _, segment := range result.Segments {
		info := whatlanggo.Detect(segment.Text)
		if !info.IsReliable() {
			continue
		}
		langCount[info.Lang.Iso6391()]++
	}

	var topLang string
	var topCount int
	for lang, count := range langCount {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}
	return topLang
}

// MatchesLanguage reports whether the detected language of the result agrees
// with the requested code. Detection failure counts as a match: the model's
// output is trusted unless detection clearly disagrees.
func MatchesLanguage(result *Result, code string) bool {
	detected := DetectedCode(result)
	return detected == "" || detected == code
}
