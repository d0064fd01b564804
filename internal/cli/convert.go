package cli

import (
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert a subtitle file to another format",
	Long: `Read a subtitle file and write it in another format.

The output format comes from --format or the output file extension. Without
--output the result is written to stdout.

Examples:
  subdoc convert movie.srt -o movie.ass
  subdoc convert movie.ass -f vtt > movie.vtt
  subdoc convert movie.sub --fps 25 -o movie.srt
  subdoc convert movie.ass -f srt -O apply_styles=false`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}

	logger.Debugw("Converted subtitles",
		"from", doc.Format,
		"to", format,
		"events", doc.Len(),
	)
	reportWritten(cmd, outputPath, format, doc)
	return nil
}
