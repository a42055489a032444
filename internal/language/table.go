// Package language holds the fixed table of Indian languages supported by the
// transcription model.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Entry is one supported language: a display name and the short code passed to
// the speech model as a recognition hint.
type Entry struct {
	Name string       `json:"name"`
	Code string       `json:"code"`
	Tag  language.Tag `json:"-"`
}

// Supported is the fixed set of Indic languages the model accepts, in display
// order.
var Supported = []Entry{
	{Name: "Hindi", Code: "hi"},
	{Name: "Bengali", Code: "bn"},
	{Name: "Tamil", Code: "ta"},
	{Name: "Telugu", Code: "te"},
	{Name: "Marathi", Code: "mr"},
	{Name: "Gujarati", Code: "gu"},
	{Name: "Kannada", Code: "kn"},
	{Name: "Malayalam", Code: "ml"},
	{Name: "Punjabi", Code: "pa"},
	{Name: "Urdu", Code: "ur"},
	{Name: "Assamese", Code: "as"},
	{Name: "Nepali", Code: "ne"},
}

func init() {
	for i := range Supported {
		Supported[i].Tag = language.Make(Supported[i].Code)
	}
}

// ByName looks up a language by its display name (case-insensitive).
func ByName(name string) (Entry, error) {
	for _, entry := range Supported {
		if strings.EqualFold(entry.Name, name) {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("unsupported language: %s", name)
}

// ByCode looks up a language by its model code.
func ByCode(code string) (Entry, error) {
	for _, entry := range Supported {
		if entry.Code == code {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("unsupported language code: %s", code)
}
