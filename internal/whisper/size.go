// Package whisper loads speech-recognition models and runs transcription
// through the whisper command line tool.
package whisper

import "fmt"

// Size is a named model tier trading latency for accuracy.
type Size string

const (
	SizeTiny   Size = "tiny"
	SizeBase   Size = "base"
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sizes lists the supported model sizes, smallest first.
var Sizes = []Size{SizeTiny, SizeBase, SizeSmall, SizeMedium, SizeLarge}

// ParseSize validates a size identifier.
func ParseSize(s string) (Size, error) {
	for _, size := range Sizes {
		if string(size) == s {
			return size, nil
		}
	}
	return "", fmt.Errorf("unknown model size: %s", s)
}
