package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdoc/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate subtitles to another language using AI",
	Long: `Translate an existing subtitle file to another language using AI.

Every supported format can be translated. Styles, override tags and timing
are preserved; only visible dialogue text is sent to the provider. Comments
and vector drawings are left untouched.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line.

Without --output the result is written next to the input as
<name>.<language>[.overlay].<ext>.

Examples:
  subdoc translate video.srt --target-language japanese
  subdoc translate video.ass --target-language ja --overlay
  subdoc translate video.vtt -l english --target-language spanish -o translated.vtt
  subdoc translate video.ass -t german --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the input subtitles (optional)")
	translateCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic; default from config)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the translator")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers (default from config, 3)")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of subtitle events per API request (default from config, 50)")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	provider, err := translate.ParseProvider(providerStr)
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	if model == "" {
		model = cfg.Translate.Model
	}
	if !modelOverride {
		if err := translate.ValidateModel(provider, model); err != nil {
			return fmt.Errorf("%w (use --model-override to bypass)", err)
		}
	}

	if concurrency == 0 {
		concurrency = cfg.Translate.Concurrency
	}
	if batchSize == 0 {
		batchSize = cfg.Translate.BatchSize
	}
	if concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize < 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	doc, opts, err := readDocument(cmd, subtitlePath)
	if err != nil {
		return err
	}
	if doc.Len() == 0 {
		return fmt.Errorf("subtitle file contains no events")
	}

	if outputPath == "" {
		outputPath = translatedPath(subtitlePath, targetLang, overlay)
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"format", doc.Format,
		"events", doc.Len(),
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"overlay", overlay,
		"model", model,
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	changed, err := translate.TranslateDocument(ctx, translator, doc, translate.DocumentOptions{
		Overlay:     overlay,
		Concurrency: concurrency,
		Warner:      logger,
	})
	if err != nil {
		return err
	}

	logger.Infow("Translation complete", "translated", changed)

	format, err := writeDocument(cmd, doc, outputPath, opts)
	if err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if outputPath != stdioPath {
		absOutput, _ := filepath.Abs(outputPath)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
		fmt.Fprintf(out, "  Format: %s\n", format)
		fmt.Fprintf(out, "  Events translated: %d of %d\n", changed, doc.Len())
		fmt.Fprintf(out, "  Target language: %s\n", targetLang)
		if overlay {
			fmt.Fprintf(out, "  Mode: bilingual overlay\n")
		}
	}

	return nil
}

// translatedPath derives <name>.<language>[.overlay].<ext> from the input.
// Input read from stdin is translated to stdout.
func translatedPath(inputPath, targetLang string, overlay bool) string {
	if inputPath == stdioPath {
		return stdioPath
	}
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	lang := strings.ReplaceAll(strings.TrimSpace(targetLang), " ", "_")
	if overlay {
		return fmt.Sprintf("%s.%s.overlay%s", baseName, lang, ext)
	}
	return fmt.Sprintf("%s.%s%s", baseName, lang, ext)
}
