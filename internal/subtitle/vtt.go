package subtitle

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

var (
	vttTiming = regexp.MustCompile(
		`^\s*((?:\d{1,3}:)?\d{2}:\d{2}\.\d{3})\s*-->\s*((?:\d{1,3}:)?\d{2}:\d{2}\.\d{3})`,
	)
	vttInlineTimestamp = regexp.MustCompile(`<(?:\d{1,3}:)?\d{2}:\d{2}\.\d{3}>`)
	vttEscaper         = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// WebVTTCodec handles .vtt files. Cue settings, NOTE, STYLE and REGION
// blocks are dropped on input.
type WebVTTCodec struct{}

func (c *WebVTTCodec) Formats() []Format {
	return []Format{FormatVTT}
}

func (c *WebVTTCodec) GuessFormat(prefix string) (Format, bool) {
	head := strings.TrimLeft(strings.TrimPrefix(prefix, "\ufeff"), " \t\r\n")
	if strings.HasPrefix(head, "WEBVTT") {
		return FormatVTT, true
	}
	return "", false
}

func (c *WebVTTCodec) Read(doc *Document, r io.Reader, _ Format, opts Options) error {
	scanner := newLineScanner(r)

	var current *cueBuilder
	flush := func() {
		if current == nil {
			return
		}
		text := strings.Join(current.lines, "\n")
		doc.events = append(doc.events, NewEvent(current.start, current.end, vttInputText(text)))
		current = nil
	}

	lineNum := 0
	inBlock := false
	skipped := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				// the header may carry a description up to the first blank line
				inBlock = true
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			inBlock = false
			continue
		}
		if inBlock {
			if !vttTiming.MatchString(line) {
				continue
			}
			inBlock = false
		}

		if current == nil {
			if trimmed == "NOTE" || strings.HasPrefix(trimmed, "NOTE ") ||
				trimmed == "STYLE" || trimmed == "REGION" {
				inBlock = true
				continue
			}
		}

		if m := vttTiming.FindStringSubmatch(line); m != nil {
			flush()
			start, err1 := ParseTimestamp(m[1], TimestampWebVTT)
			end, err2 := ParseTimestamp(m[2], TimestampWebVTT)
			if err1 != nil || err2 != nil {
				skipped++
				continue
			}
			current = &cueBuilder{start: start, end: end}
			continue
		}

		if current == nil {
			// cue identifier
			continue
		}
		current.lines = append(current.lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading VTT content: %w", err)
	}
	if skipped > 0 {
		warn(opts.Warner, "skipped cues with malformed timestamps",
			"format", FormatVTT,
			"cues", skipped,
		)
	}
	return nil
}

func vttInputText(text string) string {
	text = vttInlineTimestamp.ReplaceAllString(strings.TrimSpace(text), "")
	text = htmlToTags(text)
	text = html.UnescapeString(text)
	return strings.ReplaceAll(text, "\n", `\N`)
}

// Write emits a WEBVTT header followed by visible events. Drawings are
// dropped and &, <, > in the text are escaped.
func (c *WebVTTCodec) Write(doc *Document, w io.Writer, _ Format, opts Options) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("WEBVTT\n\n"); err != nil {
		return err
	}

	index := 0
	for _, ev := range doc.events {
		if ev.Comment || ev.IsDrawing(doc.ResolveStyle(ev.Style), doc) {
			continue
		}
		index++

		escaped := *ev
		escaped.Text = escapeOutsideBlocks(ev.Text)
		text, _ := flattenText(doc, &escaped, flattenOptions{applyStyles: opts.ApplyStyles, bold: true})

		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			index,
			FormatTimestamp(ev.Start, TimestampWebVTT, opts.Warner),
			FormatTimestamp(ev.End, TimestampWebVTT, opts.Warner),
			text,
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// escapeOutsideBlocks escapes markup characters in text while leaving
// override blocks intact.
func escapeOutsideBlocks(text string) string {
	var sb strings.Builder
	pos := 0
	for _, loc := range overrideBlock.FindAllStringIndex(text, -1) {
		sb.WriteString(vttEscaper.Replace(text[pos:loc[0]]))
		sb.WriteString(text[loc[0]:loc[1]])
		pos = loc[1]
	}
	sb.WriteString(vttEscaper.Replace(text[pos:]))
	return sb.String()
}
