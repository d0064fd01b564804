package subtitle

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTimestamp is returned when a timestamp token does not match
	// its grammar.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrInvalidFramerate is returned for non-positive frame rates.
	ErrInvalidFramerate = errors.New("invalid framerate")

	// ErrUnknownFormat is returned when autodetection cannot pick exactly
	// one format.
	ErrUnknownFormat = errors.New("unknown subtitle format")

	// ErrUnsupportedFormat is returned when a format identifier or file
	// extension has no registered codec.
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")

	// ErrUnknownFPS is returned by frame-based codecs when no frame rate was
	// given and none could be read from the content.
	ErrUnknownFPS = errors.New("framerate not specified")

	ErrStyleNotFound     = errors.New("style not found")
	ErrStyleNameConflict = errors.New("style name already in use")
	ErrInvalidStyleName  = errors.New("invalid style name")

	// ErrTypeMismatch is returned when a nil event or document is handed to
	// a container operation.
	ErrTypeMismatch = errors.New("type mismatch")

	ErrIndexOutOfRange = errors.New("index out of range")
)

// ParseError reports a fatal error at a specific line of a structured format.
type ParseError struct {
	Format Format
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
