package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var tmpLine = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}):(.+)$`)

const (
	// DefaultTMPEndGuessBase and DefaultTMPEndGuessPerChar estimate the
	// missing end time: a fixed floor plus roughly 15 characters per second.
	DefaultTMPEndGuessBase    = 500
	DefaultTMPEndGuessPerChar = 67
)

// TMPCodec handles the TMP format: one "H:MM:SS:text" line per subtitle,
// with | as line break and no end times.
type TMPCodec struct {
	EndGuessBase    int
	EndGuessPerChar int
}

func NewTMPCodec() *TMPCodec {
	return &TMPCodec{
		EndGuessBase:    DefaultTMPEndGuessBase,
		EndGuessPerChar: DefaultTMPEndGuessPerChar,
	}
}

func (c *TMPCodec) Formats() []Format {
	return []Format{FormatTMP}
}

func (c *TMPCodec) GuessFormat(prefix string) (Format, bool) {
	// a SubStation header wins even if some line looks like TMP
	if strings.Contains(prefix, "[Script Info]") || strings.Contains(prefix, "[V4+ Styles]") {
		return "", false
	}
	for _, line := range strings.Split(strings.TrimPrefix(prefix, "\ufeff"), "\n") {
		if tmpLine.MatchString(strings.TrimRight(line, "\r")) {
			return FormatTMP, true
		}
	}
	return "", false
}

// Read parses TMP lines. Lines that do not match the grammar are skipped.
// End times are estimated from the line length and then clamped so no event
// runs into the next one.
func (c *TMPCodec) Read(doc *Document, r io.Reader, _ Format, opts Options) error {
	scanner := newLineScanner(r)
	var events []*Event
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		m := tmpLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, err := ParseTimestamp(m[1], TimestampShort)
		if err != nil {
			continue
		}

		end := start + c.EndGuessBase + c.EndGuessPerChar*utf8.RuneCountInString(line)
		events = append(events, NewEvent(start, end, tmpInputText(m[2])))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading TMP content: %w", err)
	}

	repaired := 0
	for i := 0; i < len(events)-1; i++ {
		if next := events[i+1].Start; events[i].End > next {
			events[i].End = next
			repaired++
		}
	}
	if repaired > 0 {
		warn(opts.Warner, "clamped estimated end times to the next subtitle start",
			"format", FormatTMP,
			"events", repaired,
		)
	}

	doc.events = events
	return nil
}

func tmpInputText(text string) string {
	return htmlToTags(strings.ReplaceAll(text, "|", `\N`))
}

// Write emits one line per visible event. Drawing fragments are dropped; an
// event consisting only of drawings is still written, with empty text. Read
// skips such empty lines, so those events do not survive a round trip.
func (c *TMPCodec) Write(doc *Document, w io.Writer, _ Format, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, ev := range doc.events {
		if ev.Comment {
			continue
		}
		text, _ := flattenText(doc, ev, flattenOptions{applyStyles: opts.ApplyStyles})
		text = strings.ReplaceAll(text, "\n", "|")
		start := FormatTimestamp(ev.Start, TimestampShort, opts.Warner)
		if _, err := fmt.Fprintf(bw, "%s:%s\n", start, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
