package subtitle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	assStyleFields = []string{
		"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
		"OutlineColour", "BackColour", "Bold", "Italic", "Underline", "StrikeOut",
		"ScaleX", "ScaleY", "Spacing", "Angle", "BorderStyle", "Outline",
		"Shadow", "Alignment", "MarginL", "MarginR", "MarginV", "Encoding",
	}
	ssaStyleFields = []string{
		"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
		"TertiaryColour", "BackColour", "Bold", "Italic", "BorderStyle",
		"Outline", "Shadow", "Alignment", "MarginL", "MarginR", "MarginV",
		"AlphaLevel", "Encoding",
	}
	assEventFields = []string{
		"Layer", "Start", "End", "Style", "Name",
		"MarginL", "MarginR", "MarginV", "Effect", "Text",
	}
	ssaEventFields = []string{
		"Marked", "Start", "End", "Style", "Name",
		"MarginL", "MarginR", "MarginV", "Effect", "Text",
	}
)

type assSection int

const (
	sectionNone assSection = iota
	sectionInfo
	sectionStyles
	sectionEvents
	sectionOther
)

// SubStationCodec handles Advanced SubStation Alpha (ass) and its
// predecessor SubStation Alpha (ssa).
type SubStationCodec struct{}

func (c *SubStationCodec) Formats() []Format {
	return []Format{FormatASS, FormatSSA}
}

func (c *SubStationCodec) GuessFormat(prefix string) (Format, bool) {
	switch {
	case strings.Contains(prefix, "[V4+ Styles]"):
		return FormatASS, true
	case strings.Contains(prefix, "[V4 Styles]"):
		return FormatSSA, true
	case strings.Contains(prefix, "[Script Info]"):
		if strings.Contains(strings.ToLower(prefix), "scripttype: v4.00+") {
			return FormatASS, true
		}
		if strings.Contains(strings.ToLower(prefix), "scripttype: v4.00") {
			return FormatSSA, true
		}
		return FormatASS, true
	}
	return "", false
}

type assReader struct {
	doc    *Document
	format Format

	section     assSection
	styleFields []string
	eventFields []string
	sawInfo     bool
	sawStyles   bool
	lineNum     int
}

// Read parses the [Script Info], styles and [Events] sections. Info and
// styles found in the content replace the document's defaults; other
// sections are ignored. A malformed line aborts with a *ParseError.
func (c *SubStationCodec) Read(doc *Document, r io.Reader, format Format, _ Options) error {
	ar := &assReader{doc: doc, format: format}
	if format == FormatSSA {
		ar.styleFields, ar.eventFields = ssaStyleFields, ssaEventFields
	} else {
		ar.styleFields, ar.eventFields = assStyleFields, assEventFields
	}

	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		ar.lineNum++
		if ar.lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if err := ar.line(line); err != nil {
			return &ParseError{Format: format, Line: ar.lineNum, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s content: %w", format, err)
	}
	return nil
}

func (ar *assReader) line(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ";") {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		ar.enterSection(strings.ToLower(trimmed[1 : len(trimmed)-1]))
		return nil
	}

	key, value, ok := strings.Cut(strings.TrimLeft(line, " \t"), ":")
	if !ok {
		return nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimLeft(value, " ")
	// trailing whitespace of an event's Text column is kept
	if ar.section != sectionEvents {
		value = strings.TrimRight(value, " \t")
	}

	switch ar.section {
	case sectionInfo:
		if strings.EqualFold(key, "ScriptType") || strings.HasPrefix(key, "!") {
			return nil
		}
		ar.doc.info.Set(key, value)
	case sectionStyles:
		switch key {
		case "Format":
			ar.styleFields = splitFormatLine(value)
		case "Style":
			return ar.style(value)
		}
	case sectionEvents:
		switch key {
		case "Format":
			ar.eventFields = splitFormatLine(value)
		case "Dialogue", "Comment":
			return ar.event(value, key == "Comment")
		}
	}
	return nil
}

func (ar *assReader) enterSection(name string) {
	switch name {
	case "script info":
		ar.section = sectionInfo
		if !ar.sawInfo {
			ar.doc.resetInfo()
			ar.sawInfo = true
		}
	case "v4+ styles", "v4 styles", "v4 styles+":
		ar.section = sectionStyles
		if !ar.sawStyles {
			ar.doc.resetStyles()
			ar.sawStyles = true
		}
	case "events":
		ar.section = sectionEvents
	default:
		ar.section = sectionOther
	}
}

func splitFormatLine(value string) []string {
	fields := strings.Split(value, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// splitASSFields splits content into at most numFields fields; the last
// field keeps any remaining commas.
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", numFields)
}

func (ar *assReader) style(value string) error {
	parts := splitASSFields(value, len(ar.styleFields))
	if len(parts) < len(ar.styleFields) {
		return fmt.Errorf("style line has %d fields, expected %d", len(parts), len(ar.styleFields))
	}

	name := ""
	s := DefaultStyle()
	for i, field := range ar.styleFields {
		v := strings.TrimSpace(parts[i])
		var err error
		switch strings.ToLower(field) {
		case "name":
			name = v
		case "fontname":
			s.Fontname = v
		case "fontsize":
			s.Fontsize, err = parseFloatField(v)
		case "primarycolour":
			s.PrimaryColor, err = parseColor(v)
		case "secondarycolour":
			s.SecondaryColor, err = parseColor(v)
		case "outlinecolour", "tertiarycolour":
			s.OutlineColor, err = parseColor(v)
		case "backcolour":
			s.BackColor, err = parseColor(v)
		case "bold":
			s.Bold, err = parseFlagField(v)
		case "italic":
			s.Italic, err = parseFlagField(v)
		case "underline":
			s.Underline, err = parseFlagField(v)
		case "strikeout":
			s.Strikeout, err = parseFlagField(v)
		case "scalex":
			s.ScaleX, err = parseFloatField(v)
		case "scaley":
			s.ScaleY, err = parseFloatField(v)
		case "spacing":
			s.Spacing, err = parseFloatField(v)
		case "angle":
			s.Angle, err = parseFloatField(v)
		case "borderstyle":
			s.BorderStyle, err = strconv.Atoi(v)
		case "outline":
			s.Outline, err = parseFloatField(v)
		case "shadow":
			s.Shadow, err = parseFloatField(v)
		case "alignment":
			var a int
			a, err = strconv.Atoi(v)
			if ar.format == FormatSSA {
				s.Alignment = alignmentFromSSA(a)
			} else {
				s.Alignment = Alignment(a)
			}
		case "marginl":
			s.MarginL, err = strconv.Atoi(v)
		case "marginr":
			s.MarginR, err = strconv.Atoi(v)
		case "marginv":
			s.MarginV, err = strconv.Atoi(v)
		case "alphalevel":
			s.AlphaLevel, err = strconv.Atoi(v)
		case "encoding":
			s.Encoding, err = strconv.Atoi(v)
		}
		if err != nil {
			return fmt.Errorf("style field %s: %w", field, err)
		}
	}

	if !validStyleName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
	}
	ar.doc.styles.Set(name, s)
	return nil
}

func (ar *assReader) event(value string, comment bool) error {
	parts := splitASSFields(value, len(ar.eventFields))
	if len(parts) < len(ar.eventFields) {
		return fmt.Errorf("event line has %d fields, expected %d", len(parts), len(ar.eventFields))
	}

	ev := NewEvent(0, 0, "")
	ev.Comment = comment
	hasText := false
	for i, field := range ar.eventFields {
		v := parts[i]
		var err error
		switch strings.ToLower(field) {
		case "layer":
			ev.Layer, err = strconv.Atoi(strings.TrimSpace(v))
		case "start":
			ev.Start, err = ParseTimestamp(v, TimestampSubStation)
		case "end":
			ev.End, err = ParseTimestamp(v, TimestampSubStation)
		case "style":
			ev.Style = strings.TrimPrefix(strings.TrimSpace(v), "*")
		case "name", "actor":
			ev.Name = strings.TrimSpace(v)
		case "marginl":
			ev.MarginL, err = strconv.Atoi(strings.TrimSpace(v))
		case "marginr":
			ev.MarginR, err = strconv.Atoi(strings.TrimSpace(v))
		case "marginv":
			ev.MarginV, err = strconv.Atoi(strings.TrimSpace(v))
		case "effect":
			ev.Effect = strings.TrimSpace(v)
		case "text":
			ev.Text = v
			hasText = true
		}
		if err != nil {
			return fmt.Errorf("event field %s: %w", field, err)
		}
	}
	if !hasText {
		return errors.New("events format has no Text column")
	}

	ar.doc.events = append(ar.doc.events, ev)
	return nil
}

func parseFloatField(v string) (float64, error) {
	return strconv.ParseFloat(v, 64)
}

// parseFlagField reads SubStation booleans: -1 is true, 0 is false. Any
// other nonzero value is treated as true.
func parseFlagField(v string) (bool, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// Write serializes info, styles and events. ScriptType is derived from
// format; literal newlines in event text are written as \N.
func (c *SubStationCodec) Write(doc *Document, w io.Writer, format Format, opts Options) error {
	ssa := format == FormatSSA
	bw := bufio.NewWriter(w)

	bw.WriteString("[Script Info]\n")
	bw.WriteString("; Script generated by subdoc\n")
	if ssa {
		bw.WriteString("ScriptType: v4.00\n")
	} else {
		bw.WriteString("ScriptType: v4.00+\n")
	}
	for key, value := range doc.InfoEntries() {
		fmt.Fprintf(bw, "%s: %s\n", key, value)
	}

	styleFields, eventFields := assStyleFields, assEventFields
	if ssa {
		styleFields, eventFields = ssaStyleFields, ssaEventFields
		bw.WriteString("\n[V4 Styles]\n")
	} else {
		bw.WriteString("\n[V4+ Styles]\n")
	}
	fmt.Fprintf(bw, "Format: %s\n", strings.Join(styleFields, ", "))
	for name, s := range doc.Styles() {
		fmt.Fprintf(bw, "Style: %s\n", strings.Join(styleValues(name, s, styleFields, ssa), ","))
	}

	bw.WriteString("\n[Events]\n")
	fmt.Fprintf(bw, "Format: %s\n", strings.Join(eventFields, ", "))
	for _, ev := range doc.events {
		kind := "Dialogue"
		if ev.Comment {
			kind = "Comment"
		}
		fmt.Fprintf(bw, "%s: %s\n", kind, strings.Join(eventValues(ev, eventFields, opts.Warner), ","))
	}

	return bw.Flush()
}

func styleValues(name string, s Style, fields []string, ssa bool) []string {
	color := func(c Color) string {
		if ssa {
			return strconv.Itoa(int(c.B)<<16 | int(c.G)<<8 | int(c.R))
		}
		return c.substation()
	}

	out := make([]string, len(fields))
	for i, field := range fields {
		var v string
		switch strings.ToLower(field) {
		case "name":
			v = name
		case "fontname":
			v = s.Fontname
		case "fontsize":
			v = formatFloatField(s.Fontsize)
		case "primarycolour":
			v = color(s.PrimaryColor)
		case "secondarycolour":
			v = color(s.SecondaryColor)
		case "outlinecolour", "tertiarycolour":
			v = color(s.OutlineColor)
		case "backcolour":
			v = color(s.BackColor)
		case "bold":
			v = formatFlagField(s.Bold)
		case "italic":
			v = formatFlagField(s.Italic)
		case "underline":
			v = formatFlagField(s.Underline)
		case "strikeout":
			v = formatFlagField(s.Strikeout)
		case "scalex":
			v = formatFloatField(s.ScaleX)
		case "scaley":
			v = formatFloatField(s.ScaleY)
		case "spacing":
			v = formatFloatField(s.Spacing)
		case "angle":
			v = formatFloatField(s.Angle)
		case "borderstyle":
			v = strconv.Itoa(s.BorderStyle)
		case "outline":
			v = formatFloatField(s.Outline)
		case "shadow":
			v = formatFloatField(s.Shadow)
		case "alignment":
			if ssa {
				v = strconv.Itoa(s.Alignment.ssa())
			} else {
				v = strconv.Itoa(int(s.Alignment))
			}
		case "marginl":
			v = strconv.Itoa(s.MarginL)
		case "marginr":
			v = strconv.Itoa(s.MarginR)
		case "marginv":
			v = strconv.Itoa(s.MarginV)
		case "alphalevel":
			v = strconv.Itoa(s.AlphaLevel)
		case "encoding":
			v = strconv.Itoa(s.Encoding)
		}
		out[i] = v
	}
	return out
}

func eventValues(ev *Event, fields []string, w Warner) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		var v string
		switch strings.ToLower(field) {
		case "layer":
			v = strconv.Itoa(ev.Layer)
		case "marked":
			v = "Marked=0"
		case "start":
			v = FormatTimestamp(ev.Start, TimestampSubStation, w)
		case "end":
			v = FormatTimestamp(ev.End, TimestampSubStation, w)
		case "style":
			v = ev.Style
		case "name":
			v = ev.Name
		case "marginl":
			v = strconv.Itoa(ev.MarginL)
		case "marginr":
			v = strconv.Itoa(ev.MarginR)
		case "marginv":
			v = strconv.Itoa(ev.MarginV)
		case "effect":
			v = ev.Effect
		case "text":
			v = strings.ReplaceAll(strings.ReplaceAll(ev.Text, "\r\n", `\N`), "\n", `\N`)
		}
		out[i] = v
	}
	return out
}

func formatFloatField(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFlagField(b bool) string {
	if b {
		return "-1"
	}
	return "0"
}
