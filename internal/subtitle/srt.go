package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var srtTiming = regexp.MustCompile(
	`^\s*(\d{1,3}:\d{1,2}:\d{1,2}[,.]\d{1,3})\s*-->\s*(\d{1,3}:\d{1,2}:\d{1,2}[,.]\d{1,3})`,
)

// SubRipCodec handles .srt files. <i>, <b>, <u> and <s> map to override
// tags; any other markup is dropped.
type SubRipCodec struct{}

func (c *SubRipCodec) Formats() []Format {
	return []Format{FormatSRT}
}

func (c *SubRipCodec) GuessFormat(prefix string) (Format, bool) {
	head := strings.TrimLeft(strings.TrimPrefix(prefix, "\ufeff"), " \t\r\n")
	if strings.HasPrefix(head, "WEBVTT") || strings.Contains(prefix, "[Script Info]") {
		return "", false
	}
	for _, line := range strings.Split(prefix, "\n") {
		if srtTiming.MatchString(line) {
			return FormatSRT, true
		}
	}
	return "", false
}

type cueBuilder struct {
	start, end int
	lines      []string
}

func (c *SubRipCodec) Read(doc *Document, r io.Reader, _ Format, opts Options) error {
	scanner := newLineScanner(r)

	var current *cueBuilder
	flush := func() {
		if current == nil {
			return
		}
		text := strings.Join(current.lines, "\n")
		doc.events = append(doc.events, NewEvent(current.start, current.end, srtInputText(text)))
		current = nil
	}

	lineNum := 0
	skipped := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if m := srtTiming.FindStringSubmatch(line); m != nil {
			flush()
			start, err1 := ParseTimestamp(m[1], TimestampSubRip)
			end, err2 := ParseTimestamp(m[2], TimestampSubRip)
			if err1 != nil || err2 != nil {
				skipped++
				continue
			}
			current = &cueBuilder{start: start, end: end}
			continue
		}

		if current == nil {
			// cue number or stray text between cues
			continue
		}
		current.lines = append(current.lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SRT content: %w", err)
	}
	if skipped > 0 {
		warn(opts.Warner, "skipped cues with malformed timestamps",
			"format", FormatSRT,
			"cues", skipped,
		)
	}
	return nil
}

func srtInputText(text string) string {
	text = htmlToTags(strings.TrimSpace(text))
	return strings.ReplaceAll(text, "\n", `\N`)
}

// Write emits visible events numbered from 1. Drawings are dropped.
func (c *SubRipCodec) Write(doc *Document, w io.Writer, _ Format, opts Options) error {
	bw := bufio.NewWriter(w)
	index := 0
	for _, ev := range doc.events {
		if ev.Comment || ev.IsDrawing(doc.ResolveStyle(ev.Style), doc) {
			continue
		}
		text, _ := flattenText(doc, ev, flattenOptions{applyStyles: opts.ApplyStyles, bold: true})
		index++

		var sb strings.Builder
		sb.WriteString(strconv.Itoa(index))
		sb.WriteString("\n")
		sb.WriteString(FormatTimestamp(ev.Start, TimestampSubRip, opts.Warner))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(ev.End, TimestampSubRip, opts.Warner))
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")

		if _, err := bw.WriteString(sb.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
