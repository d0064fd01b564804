package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdoc/internal/media"
	"github.com/mgpai22/subdoc/internal/subtitle"
	"github.com/mgpai22/subdoc/internal/textenc"
)

const stdioPath = "-"

// codecOptions merges the configuration with --fps and --option flags.
func codecOptions(cmd *cobra.Command) (subtitle.Options, error) {
	opts := cfg.Options()
	opts.Warner = logger

	if cmd.Flags().Changed("fps") {
		fps, _ := cmd.Flags().GetFloat64("fps")
		if err := opts.Set("fps", fmt.Sprint(fps)); err != nil {
			return opts, err
		}
	}
	if video, _ := cmd.Flags().GetString("fps-from"); video != "" {
		processor, err := newProcessor()
		if err != nil {
			return opts, err
		}
		fps, err := processor.ProbeFrameRate(cmd.Context(), video)
		if err != nil {
			return opts, fmt.Errorf("failed to read frame rate from %s: %w", video, err)
		}
		logger.Debugw("Probed frame rate", "video", video, "fps", fps)
		opts.FPS = fps
	}

	pairs, _ := cmd.Flags().GetStringArray("option")
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return opts, fmt.Errorf("invalid option %q: expected key=value", pair)
		}
		if err := opts.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return opts, fmt.Errorf("invalid option %q: %w", pair, err)
		}
	}
	return opts, nil
}

func newProcessor() (*media.Processor, error) {
	bin, err := media.ResolveBinaries(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
	if err != nil {
		return nil, err
	}
	return media.NewProcessor(bin, ""), nil
}

func encoding(cmd *cobra.Command) string {
	if enc, _ := cmd.Flags().GetString("encoding"); enc != "" {
		return enc
	}
	return cfg.Encoding
}

// readText returns the decoded content of path, or of stdin for "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	var src io.Reader = cmd.InOrStdin()
	if path != stdioPath {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open subtitle file: %w", err)
		}
		defer f.Close()
		src = f
	}

	r, err := textenc.NewReader(src, encoding(cmd))
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", displayName(path), err)
	}
	return string(data), nil
}

// readDocument parses path, or stdin for "-", using the input format flag
// or autodetection.
func readDocument(cmd *cobra.Command, path string) (*subtitle.Document, subtitle.Options, error) {
	opts, err := codecOptions(cmd)
	if err != nil {
		return nil, opts, err
	}
	inputFormat, _ := cmd.Flags().GetString("input-format")

	text, err := readText(cmd, path)
	if err != nil {
		return nil, opts, err
	}

	doc, err := cfg.Registry().Read(strings.NewReader(text), subtitle.Format(strings.ToLower(inputFormat)), opts)
	if err != nil {
		return nil, opts, fmt.Errorf("failed to parse %s: %w", displayName(path), err)
	}

	logger.Debugw("Parsed subtitle file",
		"input", displayName(path),
		"format", doc.Format,
		"events", doc.Len(),
		"styles", doc.StyleCount(),
	)
	return doc, opts, nil
}

// outputFormat picks the format to write: --format, then the output file
// extension, then the format the document was read from.
func outputFormat(cmd *cobra.Command, reg *subtitle.Registry, outputPath string, doc *subtitle.Document) (subtitle.Format, error) {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format := subtitle.Format(strings.ToLower(f))
		if _, err := reg.Codec(format); err != nil {
			return "", err
		}
		return format, nil
	}
	if outputPath != "" && outputPath != stdioPath {
		if ext := filepath.Ext(outputPath); ext != "" {
			return reg.FormatFromExtension(ext)
		}
	}
	if doc.Format == "" {
		return "", fmt.Errorf("%w: no output format given", subtitle.ErrUnsupportedFormat)
	}
	return doc.Format, nil
}

// writeDocument serializes doc to outputPath, or stdout when it is empty or
// "-". Files are replaced atomically.
func writeDocument(cmd *cobra.Command, doc *subtitle.Document, outputPath string, opts subtitle.Options) (subtitle.Format, error) {
	reg := cfg.Registry()
	format, err := outputFormat(cmd, reg, outputPath, doc)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w, err := textenc.NewWriter(&buf, encoding(cmd))
	if err != nil {
		return "", err
	}
	if err := reg.Write(doc, w, format, opts); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", format, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}

	if outputPath == "" || outputPath == stdioPath {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return format, err
	}
	if err := writeFileAtomic(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return format, nil
}

// writeFileAtomic writes data to a temporary file next to destPath and
// renames it into place.
func writeFileAtomic(destPath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".subdoc-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	_ = os.Chmod(tmpName, perm)

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func displayName(path string) string {
	if path == stdioPath {
		return "stdin"
	}
	return filepath.Base(path)
}

// reportWritten prints where output went, unless the document itself went
// to stdout.
func reportWritten(cmd *cobra.Command, outputPath string, format subtitle.Format, doc *subtitle.Document) {
	if outputPath == "" || outputPath == stdioPath {
		return
	}
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d events)\n", absOutput, format, doc.Len())
}
