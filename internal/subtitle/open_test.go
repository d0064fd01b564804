package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestOpenSRTFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	path := writeTestFile(t, "test.srt", content)

	doc, err := Open(path, DefaultRegistry(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	if doc.Format != FormatSRT {
		t.Errorf("expected format srt, got %s", doc.Format)
	}
	if doc.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", doc.Len())
	}

	first := doc.At(0)
	if first.Start != 1000 || first.End != 4000 {
		t.Errorf("event 0: expected 1000-4000, got %d-%d", first.Start, first.End)
	}
	if first.Text != "Hello, world!" {
		t.Errorf("event 0: expected 'Hello, world!', got %q", first.Text)
	}

	expectedText := `This is a test.\NWith multiple lines.`
	if doc.At(1).Text != expectedText {
		t.Errorf("event 1: expected %q, got %q", expectedText, doc.At(1).Text)
	}
	if doc.At(1).Plaintext() != "This is a test.\nWith multiple lines." {
		t.Errorf("event 1: unexpected plaintext %q", doc.At(1).Plaintext())
	}
}

func TestOpenVTTFile(t *testing.T) {
	content := `WEBVTT

1
00:00:01.000 --> 00:00:04.000
Hello, world!

2
00:00:05.500 --> 00:00:08.200
This is a test.
With multiple lines.

00:00:10.000 --> 00:00:12.500
No cue identifier.
`
	path := writeTestFile(t, "test.vtt", content)

	doc, err := Open(path, DefaultRegistry(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open VTT file: %v", err)
	}

	if doc.Format != FormatVTT {
		t.Errorf("expected format vtt, got %s", doc.Format)
	}
	if doc.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", doc.Len())
	}
	if doc.At(0).Start != 1000 {
		t.Errorf("event 0: expected start 1000, got %d", doc.At(0).Start)
	}
	if doc.At(2).Text != "No cue identifier." {
		t.Errorf("event 2: expected 'No cue identifier.', got %q", doc.At(2).Text)
	}
}

func TestOpenASSFile(t *testing.T) {
	content := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\pos(100,200)}This has positioning.
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`
	path := writeTestFile(t, "test.ass", content)

	doc, err := Open(path, DefaultRegistry(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}

	if doc.Format != FormatASS {
		t.Errorf("expected format ass, got %s", doc.Format)
	}
	if doc.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", doc.Len())
	}
	if doc.At(0).Text != "Hello, world!" {
		t.Errorf("event 0: expected 'Hello, world!', got %q", doc.At(0).Text)
	}
	if doc.At(1).Plaintext() != "This has positioning." {
		t.Errorf("event 1: expected tags stripped from plaintext, got %q", doc.At(1).Plaintext())
	}
	if doc.At(2).Plaintext() != "Line with\nnewline." {
		t.Errorf("event 2: expected 'Line with\\nnewline.', got %q", doc.At(2).Plaintext())
	}
	if title, _ := doc.Info("Title"); title != "Test Subtitles" {
		t.Errorf("expected title 'Test Subtitles', got %q", title)
	}
}

func TestSaveUsesExtension(t *testing.T) {
	doc := New()
	if err := doc.Append(NewEvent(1000, 2000, `{\i1}Hello{\i0}`)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "nested", "out.srt")
	if err := Save(doc, outPath, DefaultRegistry(), "", DefaultOptions()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	expected := "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i>\n\n"
	if string(out) != expected {
		t.Errorf("expected %q, got %q", expected, string(out))
	}
}

func TestSaveUnknownExtension(t *testing.T) {
	err := Save(New(), filepath.Join(t.TempDir(), "out.xyz"), DefaultRegistry(), "", DefaultOptions())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpenUnrecognizedContent(t *testing.T) {
	path := writeTestFile(t, "test.txt", "test")

	_, err := Open(path, DefaultRegistry(), DefaultOptions())
	if err == nil {
		t.Fatal("expected error for unrecognized content")
	}
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "test.txt") {
		t.Errorf("expected file name in error, got: %v", err)
	}
}
