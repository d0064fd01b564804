package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var reflowCmd = &cobra.Command{
	Use:   "reflow [subtitle_file]",
	Short: "Split long events and rewrap their lines",
	Long: `Split events whose text or duration is too long into consecutive events
and wrap lines at the nearest word boundary. Events with override tags,
comments and drawings are left as they are.

Examples:
  subdoc reflow movie.srt -o movie.srt
  subdoc reflow movie.vtt --max-chars 32 --max-lines 2 --max-duration 6s`,
	Args: cobra.ExactArgs(1),
	RunE: runReflow,
}

func init() {
	rootCmd.AddCommand(reflowCmd)

	reflowCmd.Flags().Int("max-chars", 0, "Maximum characters per line (default from config, 42)")
	reflowCmd.Flags().Int("max-lines", 0, "Maximum lines per event (default from config, 2)")
	reflowCmd.Flags().Duration("max-duration", 0, "Maximum event duration (default from config, 7s)")
}

func runReflow(cmd *cobra.Command, args []string) error {
	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	r := cfg.Reflower()
	if n, _ := cmd.Flags().GetInt("max-chars"); n > 0 {
		r.MaxCharsPerLine = n
	}
	if n, _ := cmd.Flags().GetInt("max-lines"); n > 0 {
		r.MaxLinesPerEvent = n
	}
	if d, _ := cmd.Flags().GetDuration("max-duration"); d > 0 {
		r.MaxDuration = int(d / time.Millisecond)
	}

	before := doc.Len()
	changed := r.Reflow(doc)
	logger.Infow("Reflowed events",
		"changed", changed,
		"events_before", before,
		"events_after", doc.Len(),
	)

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}
