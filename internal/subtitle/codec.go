package subtitle

import "io"

// Codec reads and writes one family of formats.
type Codec interface {
	// Formats lists the identifiers the codec handles.
	Formats() []Format

	// GuessFormat classifies a content prefix. It must not fail on foreign
	// content; it reports false instead.
	GuessFormat(prefix string) (Format, bool)

	// Read parses r into doc, which it mutates in place.
	Read(doc *Document, r io.Reader, format Format, opts Options) error

	// Write serializes doc to w without modifying it.
	Write(doc *Document, w io.Writer, format Format, opts Options) error
}
