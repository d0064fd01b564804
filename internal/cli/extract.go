package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdoc/internal/media"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract an embedded subtitle stream from a video file",
	Long: `Extract a text subtitle stream from a video container with ffmpeg and
write it in any supported format. Bitmap subtitles (PGS, VobSub) cannot be
extracted.

ffmpeg and ffprobe are looked up in the config file, then in
SUBDOC_FFMPEG_PATH / SUBDOC_FFPROBE_PATH, then in PATH.

Examples:
  subdoc extract movie.mkv --list
  subdoc extract movie.mkv -o movie.ass
  subdoc extract movie.mkv --stream 1 -f srt -o movie.en.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream to extract, counting subtitle streams only")
	extractCmd.Flags().
		Bool("list", false, "List the subtitle streams instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")
	ctx := cmd.Context()

	processor, err := newProcessor()
	if err != nil {
		return err
	}

	if list {
		info, err := processor.Probe(ctx, videoPath)
		if err != nil {
			return err
		}
		printStreams(cmd, info)
		return nil
	}

	opts, err := codecOptions(cmd)
	if err != nil {
		return err
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"stream", stream,
		"output", outputPath,
	)

	extractOpts := media.DefaultExtractOptions()
	extractOpts.Stream = stream
	doc, err := processor.ExtractSubtitles(ctx, videoPath, extractOpts, cfg.Registry(), opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}

func printStreams(cmd *cobra.Command, info *media.Info) {
	out := cmd.OutOrStdout()
	if len(info.Subtitles) == 0 {
		fmt.Fprintln(out, "No subtitle streams")
		return
	}
	for _, s := range info.Subtitles {
		details := []string{s.Codec}
		if s.Language != "" {
			details = append(details, s.Language)
		}
		if s.Title != "" {
			details = append(details, fmt.Sprintf("%q", s.Title))
		}
		fmt.Fprintf(out, "%d: %s\n", s.Index, strings.Join(details, " "))
	}
}
