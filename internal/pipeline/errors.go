package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies pipeline failures so callers can branch on the failure
// stage instead of matching message strings.
type ErrorKind int

const (
	ErrExtraction ErrorKind = iota
	ErrModelLoad
	ErrTranscription
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrExtraction:
		return "Extraction"
	case ErrModelLoad:
		return "ModelLoad"
	case ErrTranscription:
		return "Transcription"
	case ErrInternal:
		return "Internal"
	default:
		return "Internal"
	}
}

// Error is a classified pipeline failure carrying the wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func WrapError(err error, kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Kind.String(), e.Message)}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}
	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		return pipeErr.Kind == kind
	}
	return false
}
