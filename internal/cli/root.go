package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subdoc/internal/config"
	"github.com/mgpai22/subdoc/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subdoc",
	Short: "Read, convert and edit subtitle files",
	Long: `Subdoc reads subtitle files in SubStation Alpha (ASS/SSA), SubRip,
WebVTT, MicroDVD and TMP formats into one document model, edits them and
writes them back out in any of those formats.

The input format is detected from the file content unless --input-format
is given. The output format follows --format or the output file extension.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the command line. An interrupt cancels running requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default subdoc.yaml or $SUBDOC_CONFIG)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path (- for stdout)")
	rootCmd.PersistentFlags().
		StringP("format", "f", "", "Output format (ass, ssa, srt, vtt, microdvd, tmp)")
	rootCmd.PersistentFlags().
		String("input-format", "", "Input format; detected from content when empty")
	rootCmd.PersistentFlags().
		StringP("encoding", "e", "", "Character encoding of input and output files (default utf-8)")
	rootCmd.PersistentFlags().
		Float64("fps", 0, "Frame rate for frame-based formats")
	rootCmd.PersistentFlags().
		String("fps-from", "", "Take the frame rate from this video file (needs ffprobe)")
	rootCmd.MarkFlagsMutuallyExclusive("fps", "fps-from")
	rootCmd.PersistentFlags().
		StringArrayP("option", "O", nil, "Codec option as key=value (repeatable)")
}

// setup loads .env, the logger and the configuration before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	envErr := godotenv.Load()

	logger = logging.NewLogger(verbose)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warnw("Failed to load .env file", "error", envErr)
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Path() != "" {
		logger.Debugw("Loaded config", "path", cfg.Path())
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Warnw(w)
	}
	if err != nil {
		return err
	}
	return nil
}
