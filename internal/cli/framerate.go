package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var framerateCmd = &cobra.Command{
	Use:   "framerate [subtitle_file]",
	Short: "Retime subtitles from one frame rate to another",
	Long: `Rescale all event times by in/out, for subtitles timed against a video
that was converted to a different frame rate.

Examples:
  subdoc framerate movie.srt --in 25 --out 23.976 -o movie.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runFramerate,
}

func init() {
	rootCmd.AddCommand(framerateCmd)

	framerateCmd.Flags().Float64("in", 0, "Frame rate the subtitles are timed for (required)")
	framerateCmd.Flags().Float64("out", 0, "Frame rate to retime the subtitles to (required)")
	_ = framerateCmd.MarkFlagRequired("in")
	_ = framerateCmd.MarkFlagRequired("out")
}

func runFramerate(cmd *cobra.Command, args []string) error {
	inFPS, _ := cmd.Flags().GetFloat64("in")
	outFPS, _ := cmd.Flags().GetFloat64("out")

	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	if err := doc.TransformFramerate(inFPS, outFPS); err != nil {
		return err
	}
	if doc.FPS != 0 {
		doc.FPS = outFPS
	}
	if opts.FPS != 0 {
		opts.FPS = outFPS
	}

	logger.Infow("Retimed events",
		"in", inFPS,
		"out", outFPS,
		"events", doc.Len(),
	)

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return fmt.Errorf("failed to write retimed subtitles: %w", err)
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}
