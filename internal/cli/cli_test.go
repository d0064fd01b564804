package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/subdoc/internal/config"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i>\n\n2\n00:00:03,000 --> 00:00:04,500\nWorld\n\n"

const sampleASS = `[Script Info]
Title: Sample
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Sign,Verdana,32,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,2,2,8,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hello
Dialogue: 0,0:00:03.00,0:00:04.00,Sign,,0,0,0,,{\rSign}Exit
`

// resetFlags restores every flag of cmd and its children to its default so
// commands can be executed repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command with args and returns what it printed to
// stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, "")
	t.Chdir(t.TempDir())

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"srt", sampleSRT, "srt"},
		{"ass", sampleASS, "ass"},
		{"tmp", "00:00:01:Hello\n", "tmp"},
		{"microdvd", "{1}{1}25\n{0}{25}Hello\n", "microdvd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a misleading extension must not matter
			path := writeFile(t, "input.txt", tt.content)
			out, err := runCLI(t, "detect", path)
			if err != nil {
				t.Fatalf("detect failed: %v", err)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	path := writeFile(t, "notes.txt", "just some prose\n")
	if _, err := runCLI(t, "detect", path); err == nil {
		t.Error("expected error for unrecognized content")
	}
}

func TestConvertToFile(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)
	out := filepath.Join(t.TempDir(), "nested", "movie.ass")

	stdout, err := runCLI(t, "convert", in, "-o", out)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(stdout, "movie.ass") {
		t.Errorf("expected summary naming the output, got %q", stdout)
	}

	content := readFile(t, out)
	for _, want := range []string{"[V4+ Styles]", `{\i1}Hello{\i0}`, "Dialogue: 0,0:00:03.00,0:00:04.50,Default"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in output:\n%s", want, content)
		}
	}
}

func TestConvertToStdout(t *testing.T) {
	in := writeFile(t, "movie.ass", sampleASS)

	out, err := runCLI(t, "convert", in, "-f", "srt", "-O", "apply_styles=false")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	expected := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nExit\n\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestConvertWithOptions(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)

	out, err := runCLI(t, "convert", in, "-f", "microdvd", "--fps", "25", "-O", "write_fps_declaration=false")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	expected := "{25}{50}{Y:i}Hello\n{75}{113}World\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}

	if _, err := runCLI(t, "convert", in, "-f", "srt", "-O", "novalue"); err == nil {
		t.Error("expected error for malformed option")
	}
}

func TestConvertUnknownFormat(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)
	if _, err := runCLI(t, "convert", in, "-f", "docx"); err == nil {
		t.Error("expected error for unsupported output format")
	}
}

func TestConvertInputFormatOverride(t *testing.T) {
	in := writeFile(t, "movie.txt", "00:00:01:Hello\n")
	out, err := runCLI(t, "convert", in, "--input-format", "srt", "-f", "srt")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty srt document, got %q", out)
	}
}

func TestInfo(t *testing.T) {
	in := writeFile(t, "movie.ass", sampleASS)

	out, err := runCLI(t, "info", in)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{"Format:    ass", "Events:    2 (0 comments)", "Styles:    2", "Duration:  4s", "Title: Sample"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShift(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)

	out, err := runCLI(t, "shift", in, "--by", "1.5s")
	if err != nil {
		t.Fatalf("shift failed: %v", err)
	}
	if !strings.HasPrefix(out, "1\n00:00:02,500 --> 00:00:03,500\n") {
		t.Errorf("unexpected shifted output %q", out)
	}

	out, err = runCLI(t, "shift", in, "--frames", "-25", "--fps", "25")
	if err != nil {
		t.Fatalf("shift by frames failed: %v", err)
	}
	if !strings.HasPrefix(out, "1\n00:00:00,000 --> 00:00:01,000\n") {
		t.Errorf("unexpected frame-shifted output %q", out)
	}

	if _, err := runCLI(t, "shift", in, "--frames", "5"); err == nil {
		t.Error("expected error for frame shift without a frame rate")
	}
	if _, err := runCLI(t, "shift", in); err == nil {
		t.Error("expected error without --by or --frames")
	}
}

func TestFramerate(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)

	out, err := runCLI(t, "framerate", in, "--in", "25", "--out", "50")
	if err != nil {
		t.Fatalf("framerate failed: %v", err)
	}
	if !strings.HasPrefix(out, "1\n00:00:00,500 --> 00:00:01,000\n") {
		t.Errorf("unexpected retimed output %q", out)
	}

	if _, err := runCLI(t, "framerate", in, "--in", "0", "--out", "25"); err == nil {
		t.Error("expected error for invalid frame rate")
	}
}

func TestStylesList(t *testing.T) {
	in := writeFile(t, "movie.ass", sampleASS)

	out, err := runCLI(t, "styles", "list", in)
	if err != nil {
		t.Fatalf("styles list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 styles, got %q", out)
	}
	if fields := strings.Fields(lines[2]); fields[0] != "Sign" || fields[1] != "Verdana" || fields[3] != "bold" {
		t.Errorf("unexpected style row %q", lines[2])
	}
}

func TestStylesRename(t *testing.T) {
	in := writeFile(t, "movie.ass", sampleASS)
	out := filepath.Join(t.TempDir(), "renamed.ass")

	if _, err := runCLI(t, "styles", "rename", in, "Sign", "Signs", "-o", out); err != nil {
		t.Fatalf("styles rename failed: %v", err)
	}
	content := readFile(t, out)
	if !strings.Contains(content, "Style: Signs,Verdana") || !strings.Contains(content, `{\rSigns}Exit`) {
		t.Errorf("expected style and reset tag renamed:\n%s", content)
	}

	if _, err := runCLI(t, "styles", "rename", in, "Missing", "Other"); err == nil {
		t.Error("expected error renaming a missing style")
	}
}

func TestStylesImport(t *testing.T) {
	target := writeFile(t, "target.ass", strings.Replace(sampleASS, "Style: Sign,Verdana,32", "Style: Sign,Tahoma,18", 1))
	source := writeFile(t, "source.ass", sampleASS)

	out, err := runCLI(t, "styles", "import", target, "--from", source, "-f", "ass")
	if err != nil {
		t.Fatalf("styles import failed: %v", err)
	}
	if !strings.Contains(out, "Style: Sign,Verdana,32") {
		t.Errorf("expected imported style to replace the existing one:\n%s", out)
	}

	out, err = runCLI(t, "styles", "import", target, "--from", source, "--overwrite=false", "-f", "ass")
	if err != nil {
		t.Fatalf("styles import failed: %v", err)
	}
	if !strings.Contains(out, "Style: Sign,Tahoma,18") {
		t.Errorf("expected existing style kept:\n%s", out)
	}
}

func TestReflow(t *testing.T) {
	long := "1\n00:00:01,000 --> 00:00:04,000\nThis subtitle line is clearly much too long for one row\n\n"
	in := writeFile(t, "long.srt", long)

	out, err := runCLI(t, "reflow", in, "--max-chars", "30")
	if err != nil {
		t.Fatalf("reflow failed: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 4 || lines[3] == "" {
		t.Fatalf("expected wrapped text on two lines, got %q", out)
	}
	for _, line := range lines[2:4] {
		if len(line) > 30 {
			t.Errorf("line too long: %q", line)
		}
	}
}

func TestTranslateRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	in := writeFile(t, "movie.srt", sampleSRT)

	_, err := runCLI(t, "translate", in, "--target-language", "French")
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("expected missing API key error, got %v", err)
	}
}

func TestTranslateValidatesInput(t *testing.T) {
	in := writeFile(t, "movie.srt", sampleSRT)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"same language", []string{"-t", "french", "-l", "French", "-k", "x"}, "cannot be the same"},
		{"unknown provider", []string{"-t", "french", "--provider", "mystery", "-k", "x"}, "unsupported translation provider"},
		{"unknown model", []string{"-t", "french", "--model", "gpt-2", "-k", "x"}, "model-override"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"translate", in}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTranslatedPath(t *testing.T) {
	tests := []struct {
		input   string
		lang    string
		overlay bool
		want    string
	}{
		{"dir/movie.srt", "ja", false, "dir/movie.ja.srt"},
		{"movie.ass", "pt br", true, "movie.pt_br.overlay.ass"},
		{"-", "ja", false, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := translatedPath(tt.input, tt.lang, tt.overlay); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLicense(t *testing.T) {
	out, err := runCLI(t, "license")
	if err != nil {
		t.Fatalf("license failed: %v", err)
	}
	if !strings.Contains(out, "MIT License") {
		t.Errorf("expected license text, got %q", out)
	}
}

func TestConfigFileApplies(t *testing.T) {
	in := writeFile(t, "movie.txt", "00:00:05:x\n")
	cfgPath := writeFile(t, "subdoc.yaml", "tmp:\n  end_guess_base_ms: 1000\n  end_guess_per_char_ms: 0\n")

	out, err := runCLI(t, "convert", in, "--config", cfgPath, "-f", "srt")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, "00:00:05,000 --> 00:00:06,000") {
		t.Errorf("expected configured tmp end estimate, got %q", out)
	}

	if _, err := runCLI(t, "convert", in, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
