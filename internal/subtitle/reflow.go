package subtitle

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Reflower splits over-long events and wraps their text onto at most
// MaxLinesPerEvent lines of at most MaxCharsPerLine runes. Events carrying
// override tags, comments and drawings are left alone.
type Reflower struct {
	MaxCharsPerLine  int
	MaxLinesPerEvent int
	// MaxDuration in milliseconds; longer events are split. 0 disables.
	MaxDuration int
}

func NewReflower() *Reflower {
	return &Reflower{
		MaxCharsPerLine:  42, // standard subtitle line length
		MaxLinesPerEvent: 2,  // most players support 2 lines
		MaxDuration:      7000,
	}
}

// Reflow rewrites doc in place and returns the number of events that were
// split or rewrapped.
func (r *Reflower) Reflow(doc *Document) int {
	changed := 0
	out := make([]*Event, 0, len(doc.events))

	for _, ev := range doc.events {
		if !r.reflowable(ev) {
			out = append(out, ev)
			continue
		}

		text := strings.Join(strings.Fields(ev.Plaintext()), " ")
		if r.needsSplit(text, ev.Duration()) {
			parts := r.split(ev, text)
			out = append(out, parts...)
			changed++
			continue
		}

		wrapped := *ev
		wrapped.SetPlaintext(r.wrap(text))
		if wrapped.Text != ev.Text {
			changed++
		}
		out = append(out, &wrapped)
	}

	doc.events = out
	return changed
}

func (r *Reflower) reflowable(ev *Event) bool {
	if ev.Comment || overrideBlock.MatchString(ev.Text) {
		return false
	}
	return strings.TrimSpace(ev.Plaintext()) != ""
}

func (r *Reflower) needsSplit(text string, duration int) bool {
	if len(r.fill(strings.Fields(text))) > r.maxLines() {
		return true
	}
	return r.MaxDuration > 0 && duration > r.MaxDuration
}

func (r *Reflower) maxLines() int {
	return max(r.MaxLinesPerEvent, 1)
}

// fill packs words greedily into lines of at most MaxCharsPerLine runes. A
// word longer than that gets a line of its own.
func (r *Reflower) fill(words []string) [][]string {
	var lines [][]string
	lineLen := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if len(lines) > 0 && lineLen+1+n <= r.MaxCharsPerLine {
			last := len(lines) - 1
			lines[last] = append(lines[last], word)
			lineLen += 1 + n
			continue
		}
		lines = append(lines, []string{word})
		lineLen = n
	}
	return lines
}

// split distributes the words of ev over consecutive events of equal
// duration, each holding at most MaxLinesPerEvent filled lines. The last part
// ends at the original end time.
func (r *Reflower) split(ev *Event, text string) []*Event {
	lines := r.fill(strings.Fields(text))
	if len(lines) == 0 {
		return []*Event{ev}
	}

	var chunks [][]string
	for len(lines) > 0 {
		n := min(r.maxLines(), len(lines))
		var chunk []string
		for _, line := range lines[:n] {
			chunk = append(chunk, line...)
		}
		chunks = append(chunks, chunk)
		lines = lines[n:]
	}

	if r.MaxDuration > 0 && ev.Duration() > r.MaxDuration {
		chunks = halveUntil(chunks, ev.Duration()/r.MaxDuration+1)
	}

	durationPerSplit := ev.Duration() / len(chunks)

	parts := make([]*Event, 0, len(chunks))
	start := ev.Start
	for i, chunk := range chunks {
		end := start + durationPerSplit
		if i == len(chunks)-1 {
			end = ev.End
		}

		part := *ev
		part.Start, part.End = start, end
		part.SetPlaintext(r.wrap(strings.Join(chunk, " ")))
		parts = append(parts, &part)

		start = end
	}
	return parts
}

// halveUntil splits the chunk with the most words in half until there are at
// least n chunks or no chunk has two words left. A contiguous run of words
// never needs more lines than the chunk it came from.
func halveUntil(chunks [][]string, n int) [][]string {
	for len(chunks) < n {
		widest := 0
		for i, chunk := range chunks {
			if len(chunk) > len(chunks[widest]) {
				widest = i
			}
		}
		words := chunks[widest]
		if len(words) < 2 {
			break
		}
		mid := len(words) / 2
		chunks = slices.Insert(chunks, widest+1, words[mid:])
		chunks[widest] = words[:mid]
	}
	return chunks
}

// wrap lays text out on lines of at most MaxCharsPerLine runes. Text that
// fits on two lines is broken at the word boundary closest to the middle;
// longer text is filled greedily.
func (r *Reflower) wrap(text string) string {
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= r.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	if r.maxLines() >= 2 {
		if first, second, ok := r.balanced(words, runeCount); ok {
			return first + "\n" + second
		}
	}

	lines := r.fill(words)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Join(line, " ")
	}
	return strings.Join(out, "\n")
}

// balanced splits words into two lines of similar length. ok is false when
// either line would exceed MaxCharsPerLine.
func (r *Reflower) balanced(words []string, runeCount int) (first, second string, ok bool) {
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}
		if diff := abs(currentLen - middle); diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}
	if bestSplit == 0 {
		return "", "", false
	}

	first = strings.Join(words[:bestSplit], " ")
	second = strings.Join(words[bestSplit:], " ")
	if utf8.RuneCountInString(first) > r.MaxCharsPerLine || utf8.RuneCountInString(second) > r.MaxCharsPerLine {
		return "", "", false
	}
	return first, second, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
