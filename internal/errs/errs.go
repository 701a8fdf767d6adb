// Package errs defines the error taxonomy shared by the conversion pipeline
// and the format writers. Every failure crossing a package boundary is an
// *Error carrying a Kind; callers branch on KindOf rather than string
// matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a conversion failure.
type Kind int

const (
	InvalidInput Kind = iota
	InsufficientEdges
	TooManyEdges
	NoContours
	InsufficientStitches
	InvalidCoordinates
	FormatLimit
	EncodingFailure
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case InsufficientEdges:
		return "insufficient edges"
	case TooManyEdges:
		return "too many edges"
	case NoContours:
		return "no contours"
	case InsufficientStitches:
		return "insufficient stitches"
	case InvalidCoordinates:
		return "invalid coordinates"
	case FormatLimit:
		return "format limit exceeded"
	case EncodingFailure:
		return "encoding failure"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified conversion error. Stage is filled in by the
// orchestrator when the error surfaces from a pipeline stage.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error // optional underlying cause
}

func (e *Error) Error() string {
	s := e.Msg
	if s == "" {
		s = e.Kind.String()
	}
	if e.Stage != "" {
		s = e.Stage + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(k Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithStage annotates err with the pipeline stage it surfaced from.
// Errors outside the taxonomy are wrapped as EncodingFailure.
func WithStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Stage == "" {
			e.Stage = stage
		}
		return err
	}
	return &Error{Kind: EncodingFailure, Stage: stage, Msg: "internal error", Err: err}
}

// KindOf extracts the Kind from err. The second return is false for errors
// outside the taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
