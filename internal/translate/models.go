package translate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

var (
	geminiModels = []string{
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	}
	openAIModels = []string{
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	}
)

// DefaultModel is used when no model is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenAI:
		return "gpt-5-mini"
	case ProviderAnthropic:
		return string(anthropic.ModelClaudeHaiku4_5)
	default:
		return ""
	}
}

// ValidateModel rejects models the provider is not known to serve. Any
// claude-* model is accepted for Anthropic.
func ValidateModel(p Provider, model string) error {
	if model == "" {
		return nil
	}
	switch p {
	case ProviderGemini:
		if !slices.Contains(geminiModels, model) {
			return fmt.Errorf("unsupported Gemini model %q: valid models are %s",
				model, strings.Join(geminiModels, ", "))
		}
	case ProviderOpenAI:
		if !slices.Contains(openAIModels, model) {
			return fmt.Errorf("unsupported OpenAI model %q: valid models are %s",
				model, strings.Join(openAIModels, ", "))
		}
	case ProviderAnthropic:
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("unsupported Anthropic model %q: expected a claude-* model", model)
		}
	}
	return nil
}
