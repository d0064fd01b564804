package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// Warner receives non-fatal conditions such as clamped timestamps.
// *zap.SugaredLogger satisfies it.
type Warner interface {
	Warnw(msg string, keysAndValues ...any)
}

func warn(w Warner, msg string, keysAndValues ...any) {
	if w == nil {
		return
	}
	w.Warnw(msg, keysAndValues...)
}

// Options are passed to every codec Read and Write. Codecs look only at the
// fields they understand.
type Options struct {
	// FPS overrides the frame rate for frame-based formats. 0 means unset.
	FPS float64
	// ApplyStyles controls whether writers emit their own styling markup.
	ApplyStyles bool
	// WriteFPSDeclaration makes MicroDVD output start with a frame rate line.
	WriteFPSDeclaration bool
	// SniffBudget is the number of runes inspected by autodetection.
	SniffBudget int
	Warner      Warner
	// Extra holds options no built-in codec recognizes.
	Extra map[string]string
}

const DefaultSniffBudget = 10000

func DefaultOptions() Options {
	return Options{
		ApplyStyles:         true,
		WriteFPSDeclaration: true,
		SniffBudget:         DefaultSniffBudget,
	}
}

// Set assigns an option from its string form, as given on a command line.
// Unknown keys are kept in Extra.
func (o *Options) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "fps":
		fps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("option fps: %w", err)
		}
		if err := checkFramerate(fps); err != nil {
			return fmt.Errorf("option fps: %w", err)
		}
		o.FPS = fps
	case "apply_styles":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option apply_styles: %w", err)
		}
		o.ApplyStyles = b
	case "write_fps_declaration":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option write_fps_declaration: %w", err)
		}
		o.WriteFPSDeclaration = b
	case "sniff_budget":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option sniff_budget: %w", err)
		}
		o.SniffBudget = n
	default:
		if o.Extra == nil {
			o.Extra = make(map[string]string)
		}
		o.Extra[key] = value
	}
	return nil
}

func (o Options) sniffBudget() int {
	if o.SniffBudget > 0 {
		return o.SniffBudget
	}
	return DefaultSniffBudget
}
