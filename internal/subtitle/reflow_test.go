package subtitle

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestReflowWrapsLongLine(t *testing.T) {
	doc := New()
	_ = doc.Append(NewEvent(0, 3000, "This line is a little too long to fit on one row"))

	changed := NewReflower().Reflow(doc)
	if changed != 1 {
		t.Errorf("expected 1 changed event, got %d", changed)
	}
	if doc.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", doc.Len())
	}

	lines := strings.Split(doc.At(0).Plaintext(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", doc.At(0).Text)
	}
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 42 {
			t.Errorf("line too long: %q", line)
		}
	}
}

func TestReflowSplitsLongEvent(t *testing.T) {
	words := strings.Repeat("word ", 40)
	doc := New()
	_ = doc.Append(NewEvent(1000, 9000, words))

	NewReflower().Reflow(doc)

	if doc.Len() < 2 {
		t.Fatalf("expected event to be split, got %d events", doc.Len())
	}
	if doc.At(0).Start != 1000 {
		t.Errorf("expected first part to start at 1000, got %d", doc.At(0).Start)
	}
	if last := doc.At(doc.Len() - 1); last.End != 9000 {
		t.Errorf("expected last part to end at 9000, got %d", last.End)
	}
	for i := 0; i < doc.Len()-1; i++ {
		if doc.At(i).End != doc.At(i+1).Start {
			t.Errorf("parts %d and %d are not contiguous", i, i+1)
		}
	}

	total := 0
	for _, ev := range doc.Events() {
		total += len(strings.Fields(ev.Plaintext()))
	}
	if total != 40 {
		t.Errorf("expected 40 words across parts, got %d", total)
	}
}

// checkLayout verifies every event of doc fits r's line limits and that the
// events together still carry want words.
func checkLayout(t *testing.T, r *Reflower, doc *Document, want int) {
	t.Helper()
	total := 0
	for i, ev := range doc.Events() {
		lines := strings.Split(ev.Plaintext(), "\n")
		if len(lines) > r.MaxLinesPerEvent {
			t.Errorf("event %d has %d lines: %q", i, len(lines), ev.Text)
		}
		for _, line := range lines {
			if n := utf8.RuneCountInString(line); n > r.MaxCharsPerLine {
				t.Errorf("event %d line has %d chars: %q", i, n, line)
			}
			total += len(strings.Fields(line))
		}
		if i > 0 && doc.At(i-1).End != ev.Start {
			t.Errorf("events %d and %d are not contiguous", i-1, i)
		}
	}
	if total != want {
		t.Errorf("expected %d words, got %d", want, total)
	}
}

func TestReflowThreeLines(t *testing.T) {
	r := &Reflower{MaxCharsPerLine: 42, MaxLinesPerEvent: 3}
	doc := New()
	_ = doc.Append(NewEvent(0, 5000, strings.TrimSpace(strings.Repeat("word ", 24))))

	if changed := r.Reflow(doc); changed != 1 {
		t.Errorf("expected 1 changed event, got %d", changed)
	}
	if doc.Len() != 1 {
		t.Fatalf("expected the event to fit on three lines, got %d events", doc.Len())
	}
	if lines := strings.Split(doc.At(0).Plaintext(), "\n"); len(lines) != 3 {
		t.Errorf("expected 3 lines, got %q", doc.At(0).Text)
	}
	checkLayout(t, r, doc, 24)
}

func TestReflowMixedWordLengths(t *testing.T) {
	words := strings.Repeat("a an of extraordinarily incomprehensibilities ", 6)
	r := NewReflower()
	doc := New()
	_ = doc.Append(NewEvent(0, 6000, words))

	r.Reflow(doc)

	if doc.Len() < 2 {
		t.Fatalf("expected event to be split, got %d events", doc.Len())
	}
	if last := doc.At(doc.Len() - 1); last.End != 6000 {
		t.Errorf("expected last part to end at 6000, got %d", last.End)
	}
	checkLayout(t, r, doc, 30)
}

func TestReflowLongDurationShortText(t *testing.T) {
	r := NewReflower()
	doc := New()
	_ = doc.Append(NewEvent(0, 20000, "just a few words here"))

	r.Reflow(doc)

	if doc.Len() != 3 {
		t.Fatalf("expected 3 parts for a 20s event, got %d", doc.Len())
	}
	checkLayout(t, r, doc, 5)
}

func TestReflowSkipsTaggedAndComments(t *testing.T) {
	long := strings.Repeat("tagged ", 20)
	comment := NewEvent(0, 20000, long)
	comment.Comment = true

	doc := New()
	_ = doc.Append(
		NewEvent(0, 20000, `{\i1}`+long),
		comment,
		NewEvent(0, 1000, "short"),
	)

	if changed := NewReflower().Reflow(doc); changed != 0 {
		t.Errorf("expected no changes, got %d", changed)
	}
	if doc.Len() != 3 {
		t.Errorf("expected 3 events, got %d", doc.Len())
	}
}

func TestWrapSingleWord(t *testing.T) {
	r := NewReflower()
	word := strings.Repeat("x", 60)
	if got := r.wrap(word); got != word {
		t.Errorf("expected unbreakable word unchanged, got %q", got)
	}
}
