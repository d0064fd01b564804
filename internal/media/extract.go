package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subdoc/internal/subtitle"
)

// ffmpeg encoder and file extension per output format
var subtitleEncoders = map[subtitle.Format]struct {
	codec string
	ext   string
}{
	subtitle.FormatASS: {"ass", ".ass"},
	subtitle.FormatSSA: {"ssa", ".ssa"},
	subtitle.FormatSRT: {"srt", ".srt"},
	subtitle.FormatVTT: {"webvtt", ".vtt"},
}

// ExtractOptions selects the embedded stream and the intermediate format
// ffmpeg converts it to.
type ExtractOptions struct {
	Stream int
	Format subtitle.Format
}

func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format: subtitle.FormatASS,
	}
}

// extractArgs builds the ffmpeg command line copying subtitle stream N of
// videoPath into outputPath.
func extractArgs(videoPath, outputPath string, opts ExtractOptions) ([]string, error) {
	enc, ok := subtitleEncoders[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: cannot extract to %q", subtitle.ErrUnsupportedFormat, opts.Format)
	}
	if opts.Stream < 0 {
		return nil, fmt.Errorf("invalid subtitle stream %d", opts.Stream)
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", opts.Stream),
		"c:s": enc.codec,
	}
	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs(), nil
}

// ExtractSubtitles converts an embedded text subtitle stream into a document.
// Bitmap subtitle streams cannot be converted and fail.
func (p *Processor) ExtractSubtitles(
	ctx context.Context,
	videoPath string,
	opts ExtractOptions,
	reg *subtitle.Registry,
	subOpts subtitle.Options,
) (*subtitle.Document, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	workDir, err := os.MkdirTemp(p.tempDir, "subdoc-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	ext := subtitleEncoders[opts.Format].ext
	outputPath := filepath.Join(workDir, "stream"+ext)

	args, err := extractArgs(videoPath, outputPath, opts)
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin.FFmpeg, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extraction failed: %w: %s", err, lastLine(stderr.String()))
	}

	doc, err := subtitle.Open(outputPath, reg, subOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted stream: %w", err)
	}
	return doc, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
