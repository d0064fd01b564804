package media

import (
	"context"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/mgpai22/subdoc/internal/subtitle"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "video", "codec_name": "mjpeg", "r_frame_rate": "90000/1", "disposition": {"attached_pic": 1}},
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
     "r_frame_rate": "24000/1001", "avg_frame_rate": "24000/1001", "disposition": {"attached_pic": 0}},
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "subtitle", "codec_name": "ass", "tags": {"language": "eng", "title": "Full"}},
    {"codec_type": "subtitle", "codec_name": "subrip", "tags": {"language": "jpn"}}
  ],
  "format": {"duration": "1425.300000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if math.Abs(info.FrameRate-23.976) > 0.001 {
		t.Errorf("expected frame rate 23.976, got %v", info.FrameRate)
	}
	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("unexpected video stream %s %dx%d", info.Codec, info.Width, info.Height)
	}
	if info.Duration != 1425300*time.Millisecond {
		t.Errorf("expected duration 23m45.3s, got %v", info.Duration)
	}
	if len(info.Subtitles) != 2 {
		t.Fatalf("expected 2 subtitle streams, got %d", len(info.Subtitles))
	}
	if s := info.Subtitles[1]; s.Index != 1 || s.Codec != "subrip" || s.Language != "jpn" {
		t.Errorf("unexpected subtitle stream %+v", s)
	}
}

func TestParseProbeInvalid(t *testing.T) {
	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("expected error for invalid ffprobe output")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"25/1", 25, false},
		{"30000/1001", 30000.0 / 1001, false},
		{"23.976", 23.976, false},
		{"0/0", 0, true},
		{"24/0", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFrameRate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractArgs(t *testing.T) {
	args, err := extractArgs("in.mkv", "out.vtt", ExtractOptions{Stream: 1, Format: subtitle.FormatVTT})
	if err != nil {
		t.Fatalf("extractArgs failed: %v", err)
	}
	for _, want := range []string{"-i", "in.mkv", "-map", "0:s:1", "-c:s", "webvtt", "out.vtt", "-y"} {
		if !slices.Contains(args, want) {
			t.Errorf("expected %q in %v", want, args)
		}
	}

	if _, err := extractArgs("in.mkv", "out.txt", ExtractOptions{Format: subtitle.FormatTMP}); !errors.Is(err, subtitle.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := extractArgs("in.mkv", "out.ass", ExtractOptions{Stream: -1, Format: subtitle.FormatASS}); err == nil {
		t.Error("expected error for negative stream")
	}
}

func TestResolveBinariesExplicit(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, "ffmpeg")
	ffprobePath := filepath.Join(dir, "ffprobe")
	for _, p := range []string{ffmpegPath, ffprobePath} {
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	paths, err := ResolveBinaries(ffmpegPath, ffprobePath)
	if err != nil {
		t.Fatalf("ResolveBinaries failed: %v", err)
	}
	if paths.FFmpeg != ffmpegPath || paths.FFprobe != ffprobePath {
		t.Errorf("unexpected paths %+v", paths)
	}
}

func TestResolveBinariesFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	ffprobePath := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(ffprobePath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("failed to write ffprobe: %v", err)
	}
	t.Setenv(EnvFFprobePath, ffprobePath)
	t.Setenv(EnvFFmpegPath, filepath.Join(dir, "missing"))

	_, err := ResolveBinaries("", "")
	if !errors.Is(err, ErrBinaryNotFound) {
		t.Fatalf("expected ErrBinaryNotFound for the missing ffmpeg, got %v", err)
	}

	got, err := resolve("ffprobe", "", EnvFFprobePath)
	if err != nil || got != ffprobePath {
		t.Errorf("expected %s from the environment, got %q (%v)", ffprobePath, got, err)
	}
}

func TestExtractSubtitlesMissingVideo(t *testing.T) {
	p := NewProcessor(BinaryPaths{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}, t.TempDir())
	_, err := p.ExtractSubtitles(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"),
		DefaultExtractOptions(), subtitle.DefaultRegistry(), subtitle.DefaultOptions())
	if err == nil {
		t.Error("expected error for missing video")
	}
}

// Integration test: only runs when ffmpeg and ffprobe are installed
func TestExtractAndProbeIntegration(t *testing.T) {
	bin, err := ResolveBinaries("", "")
	if err != nil {
		t.Skip("ffmpeg not available; skipping integration test")
	}

	dir := t.TempDir()
	srtPath := filepath.Join(dir, "in.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:00,500 --> 00:00:01,500\nHello\n\n"), 0o644); err != nil {
		t.Fatalf("failed to write srt: %v", err)
	}
	videoPath := filepath.Join(dir, "in.mkv")
	cmd := exec.Command(bin.FFmpeg, "-v", "error",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:r=25:d=2",
		"-i", srtPath, "-c:v", "mpeg4", "-c:s", "srt", "-y", videoPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not build test video: %v: %s", err, out)
	}

	p := NewProcessor(bin, dir)
	ctx := context.Background()

	fps, err := p.ProbeFrameRate(ctx, videoPath)
	if err != nil {
		t.Fatalf("ProbeFrameRate failed: %v", err)
	}
	if fps != 25 {
		t.Errorf("expected 25 fps, got %v", fps)
	}

	doc, err := p.ExtractSubtitles(ctx, videoPath, DefaultExtractOptions(), subtitle.DefaultRegistry(), subtitle.DefaultOptions())
	if err != nil {
		t.Fatalf("ExtractSubtitles failed: %v", err)
	}
	if doc.Len() != 1 || doc.At(0).Plaintext() != "Hello" {
		t.Errorf("unexpected extracted document with %d events", doc.Len())
	}
}
