package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdoc/internal/subtitle"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List, rename and import styles",
}

var stylesListCmd = &cobra.Command{
	Use:   "list [subtitle_file]",
	Short: "List the styles of a subtitle file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStylesList,
}

var stylesRenameCmd = &cobra.Command{
	Use:   "rename [subtitle_file] [old_name] [new_name]",
	Short: "Rename a style and every event and \\r tag using it",
	Long: `Rename a style. Events using the style and {\r<name>} override tags that
reset to it are updated too.

Examples:
  subdoc styles rename movie.ass Default Dialogue -o movie.ass`,
	Args: cobra.ExactArgs(3),
	RunE: runStylesRename,
}

var stylesImportCmd = &cobra.Command{
	Use:   "import [subtitle_file]",
	Short: "Copy styles from another subtitle file",
	Long: `Copy every style of --from into the subtitle file. Styles with the same
name are replaced unless --overwrite=false.

Examples:
  subdoc styles import episode02.ass --from episode01.ass -o episode02.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runStylesImport,
}

func init() {
	rootCmd.AddCommand(stylesCmd)
	stylesCmd.AddCommand(stylesListCmd, stylesRenameCmd, stylesImportCmd)

	stylesImportCmd.Flags().String("from", "", "Subtitle file to copy styles from (required)")
	stylesImportCmd.Flags().Bool("overwrite", true, "Replace styles that already exist")
	_ = stylesImportCmd.MarkFlagRequired("from")
}

func runStylesList(cmd *cobra.Command, args []string) error {
	doc, _, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	usage := make(map[string]int)
	for _, ev := range doc.Events() {
		usage[ev.Style]++
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFONT\tSIZE\tFLAGS\tALIGN\tEVENTS")
	for name, style := range doc.Styles() {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%d\t%d\n",
			name, style.Fontname, style.Fontsize, styleFlags(style), style.Alignment, usage[name])
	}
	return tw.Flush()
}

func styleFlags(s subtitle.Style) string {
	var flags []string
	if s.Bold {
		flags = append(flags, "bold")
	}
	if s.Italic {
		flags = append(flags, "italic")
	}
	if s.Underline {
		flags = append(flags, "underline")
	}
	if s.Strikeout {
		flags = append(flags, "strikeout")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func runStylesRename(cmd *cobra.Command, args []string) error {
	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	oldName, newName := args[1], args[2]
	if err := doc.RenameStyle(oldName, newName); err != nil {
		return fmt.Errorf("failed to rename style %q: %w", oldName, err)
	}
	logger.Infow("Renamed style", "from", oldName, "to", newName)

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}

func runStylesImport(cmd *cobra.Command, args []string) error {
	fromPath, _ := cmd.Flags().GetString("from")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	doc, opts, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}
	source, _, err := readDocument(cmd, fromPath)
	if err != nil {
		return err
	}

	if err := doc.ImportStyles(source, overwrite); err != nil {
		return fmt.Errorf("failed to import styles: %w", err)
	}
	logger.Infow("Imported styles",
		"from", displayName(fromPath),
		"styles", source.StyleCount(),
		"overwrite", overwrite,
	)

	outputPath, _ := cmd.Flags().GetString("output")
	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return err
	}
	reportWritten(cmd, outputPath, format, doc)
	return nil
}
