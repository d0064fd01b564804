package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	microDVDLine = regexp.MustCompile(`^ *\{ *(\d+) *\} *\{ *(\d+) *\}(.+)$`)

	microDVDStyle = regexp.MustCompile(`\{[Yy]:([^}]+)\}`)
	microDVDFont  = regexp.MustCompile(`\{[Ff]:([^}]+)\}`)
	microDVDSize  = regexp.MustCompile(`\{[Ss]:([^}]+)\}`)
	microDVDPos   = regexp.MustCompile(`\{P:(\d+),(\d+)\}`)
)

// MicroDVDCodec handles the frame-based "{start}{end}text" format.
type MicroDVDCodec struct{}

func (c *MicroDVDCodec) Formats() []Format {
	return []Format{FormatMicroDVD}
}

func (c *MicroDVDCodec) GuessFormat(prefix string) (Format, bool) {
	for _, line := range strings.Split(prefix, "\n") {
		if microDVDLine.MatchString(strings.TrimRight(line, "\r")) {
			return FormatMicroDVD, true
		}
	}
	return "", false
}

// Read parses MicroDVD lines. The frame rate comes from opts.FPS, the
// document, or a first subtitle whose text is a number; without any of them
// Read fails with ErrUnknownFPS. A leading "{1}{1}<fps>" declaration is
// consumed even when the frame rate is already known.
func (c *MicroDVDCodec) Read(doc *Document, r io.Reader, _ Format, opts Options) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = doc.FPS
	}

	scanner := newLineScanner(r)
	lineNum := 0
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		m := microDVDLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fstart, err1 := strconv.Atoi(m[1])
		fend, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}

		if first {
			first = false
			// the frame rate is customarily declared by the first subtitle
			declared, err := strconv.ParseFloat(strings.TrimSpace(m[3]), 64)
			isDeclaration := err == nil && checkFramerate(declared) == nil
			if fps <= 0 {
				if !isDeclaration {
					return &ParseError{
						Format: FormatMicroDVD,
						Line:   lineNum,
						Err:    fmt.Errorf("%w: no frame rate option and no declaration in content", ErrUnknownFPS),
					}
				}
				fps = declared
				continue
			}
			if isDeclaration && fstart == fend {
				continue
			}
		}

		start, err := FramesToMs(fstart, fps)
		if err != nil {
			return err
		}
		end, err := FramesToMs(fend, fps)
		if err != nil {
			return err
		}
		doc.events = append(doc.events, NewEvent(start, end, microDVDInputText(m[3])))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading MicroDVD content: %w", err)
	}

	doc.FPS = fps
	return nil
}

func microDVDInputText(text string) string {
	text = strings.ReplaceAll(text, "|", `\N`)
	text = microDVDStyle.ReplaceAllStringFunc(text, func(tag string) string {
		flags := strings.ToLower(microDVDStyle.FindStringSubmatch(tag)[1])
		var sb strings.Builder
		for _, f := range "biu" {
			if strings.ContainsRune(flags, f) {
				sb.WriteString(`\` + string(f) + "1")
			}
		}
		return "{" + sb.String() + "}"
	})
	text = microDVDFont.ReplaceAllString(text, `{\fn$1}`)
	text = microDVDSize.ReplaceAllString(text, `{\fs$1}`)
	text = microDVDPos.ReplaceAllString(text, `{\pos($1,$2)}`)
	return strings.TrimSpace(text)
}

// Write emits visible, non-drawing events. The frame rate is opts.FPS or the
// document's. Only whole-line italics survive as styling.
func (c *MicroDVDCodec) Write(doc *Document, w io.Writer, _ Format, opts Options) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = doc.FPS
	}
	if fps <= 0 {
		return fmt.Errorf("%w: frame rate must be specified when writing MicroDVD", ErrUnknownFPS)
	}
	if err := checkFramerate(fps); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if opts.WriteFPSDeclaration {
		if _, err := fmt.Fprintf(bw, "{1}{1}%s\n", strconv.FormatFloat(fps, 'f', -1, 64)); err != nil {
			return err
		}
	}

	for _, ev := range doc.events {
		if ev.Comment || ev.IsDrawing(doc.ResolveStyle(ev.Style), doc) {
			continue
		}

		text := strings.Join(strings.Split(ev.Plaintext(), "\n"), "|")
		if opts.ApplyStyles && entirelyItalic(doc, ev) {
			text = "{Y:i}" + text
		}

		start, _ := MsToFrames(ev.Start, fps)
		end, _ := MsToFrames(ev.End, fps)
		start, end = max(start, 0), max(end, 0)

		if _, err := fmt.Fprintf(bw, "{%d}{%d}%s\n", start, end, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func entirelyItalic(doc *Document, ev *Event) bool {
	seen := false
	for frag := range doc.Fragments(ev) {
		text := replaceControls(frag.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !frag.Style.Italic {
			return false
		}
		seen = true
	}
	return seen
}
