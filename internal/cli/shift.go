package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var shiftCmd = &cobra.Command{
	Use:   "shift [subtitle_file]",
	Short: "Move all events earlier or later",
	Long: `Shift every event by a duration or by a number of frames. Negative values
move events earlier; times never go below zero.

Frame shifts need a frame rate from --fps, --fps-from or the document itself.

Examples:
  subdoc shift movie.srt --by 1.5s -o movie.srt
  subdoc shift movie.ass --by -250ms
  subdoc shift movie.sub --frames 12 -o fixed.sub`,
	Args: cobra.ExactArgs(1),
	RunE: runShift,
}

func init() {
	rootCmd.AddCommand(shiftCmd)

	shiftCmd.Flags().
		Duration("by", 0, "Time to shift by (e.g. 2s, -1m30s, 250ms)")
	shiftCmd.Flags().
		Int("frames", 0, "Number of frames to shift by")
	shiftCmd.MarkFlagsOneRequired("by", "frames")
	shiftCmd.MarkFlagsMutuallyExclusive("by", "frames")
}

func runShift(cmd *cobra.Command, args []string) error {
	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("frames") {
		frames, _ := cmd.Flags().GetInt("frames")
		fps := opts.FPS
		if fps == 0 {
			fps = doc.FPS
		}
		if err := doc.ShiftFrames(frames, fps); err != nil {
			return fmt.Errorf("failed to shift by %d frames: %w", frames, err)
		}
		logger.Infow("Shifted events", "frames", frames, "fps", fps, "events", doc.Len())
	} else {
		by, _ := cmd.Flags().GetDuration("by")
		doc.Shift(by)
		logger.Infow("Shifted events", "by", by.Round(time.Millisecond).String(), "events", doc.Len())
	}

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}
