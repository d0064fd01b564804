package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [subtitle_file]",
	Short: "Print the detected format of a subtitle file",
	Long: `Detect the subtitle format from the file content, ignoring the extension.

Examples:
  subdoc detect episode01.txt
  cat movie.sub | subdoc detect -`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	opts, err := codecOptions(cmd)
	if err != nil {
		return err
	}
	text, err := readText(cmd, args[0])
	if err != nil {
		return err
	}

	format, err := cfg.Registry().Detect(text, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", displayName(args[0]), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), format)
	return nil
}
