package subtitle

import (
	"regexp"
	"strings"
)

var overrideBlock = regexp.MustCompile(`\{[^}]*\}`)

// Event is one timed subtitle line. Times are in milliseconds.
type Event struct {
	Start int
	End   int
	// Text is raw SubStation text and may contain override blocks, \N and \h.
	Text  string
	Style string
	// Comment events are kept in the document but not rendered.
	Comment bool

	Layer   int
	Name    string
	MarginL int
	MarginR int
	MarginV int
	Effect  string
}

// NewEvent returns an event using the Default style.
func NewEvent(start, end int, text string) *Event {
	return &Event{
		Start: start,
		End:   end,
		Text:  text,
		Style: "Default",
	}
}

func (e *Event) Duration() int {
	return e.End - e.Start
}

func (e *Event) Equals(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return *e == *other
}

// Plaintext returns the text with override blocks removed and \N, \n, \h
// turned into newlines and spaces.
func (e *Event) Plaintext() string {
	text := overrideBlock.ReplaceAllString(e.Text, "")
	return replaceControls(text)
}

// SetPlaintext replaces the text, encoding newlines as \N.
func (e *Event) SetPlaintext(text string) {
	e.Text = strings.ReplaceAll(text, "\n", `\N`)
}

// IsDrawing reports whether any part of the text is a vector drawing when
// resolved against base.
func (e *Event) IsDrawing(base Style, lookup StyleLookup) bool {
	for frag := range ParseTags(e.Text, base, lookup) {
		if frag.Style.Drawing {
			return true
		}
	}
	return false
}

func replaceControls(text string) string {
	return strings.NewReplacer(`\h`, " ", `\n`, "\n", `\N`, "\n").Replace(text)
}
