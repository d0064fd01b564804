package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [subtitle_file]",
	Short: "Summarize a subtitle file",
	Long: `Print the format, size, event and style counts, frame rate and running
time of a subtitle file, followed by its script info entries.

Examples:
  subdoc info movie.ass
  subdoc info movie.sub --fps 23.976`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	doc, _, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	dialogue, comments, end := 0, 0, 0
	for _, ev := range doc.Events() {
		if ev.Comment {
			comments++
		} else {
			dialogue++
		}
		end = max(end, ev.End)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:      %s\n", displayName(path))
	fmt.Fprintf(out, "Format:    %s\n", doc.Format)
	if path != stdioPath {
		if st, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "Size:      %s\n", humanize.IBytes(uint64(st.Size())))
		}
	}
	fmt.Fprintf(out, "Events:    %s (%s comments)\n",
		humanize.Comma(int64(dialogue)), humanize.Comma(int64(comments)))
	fmt.Fprintf(out, "Styles:    %d\n", doc.StyleCount())
	if doc.FPS > 0 {
		fmt.Fprintf(out, "FPS:       %s\n", humanize.Ftoa(doc.FPS))
	}
	fmt.Fprintf(out, "Duration:  %s\n", (time.Duration(end) * time.Millisecond).String())

	for key, value := range doc.InfoEntries() {
		fmt.Fprintf(out, "  %s: %s\n", key, value)
	}
	return nil
}
