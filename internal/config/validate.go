package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mgpai22/subdoc/internal/textenc"
	"github.com/mgpai22/subdoc/internal/translate"
)

const maxConcurrency = 16

// Validate checks the configuration. Problems the commands can work around
// are returned as warnings; anything else is an error.
func (c *Config) Validate() (warnings []string, err error) {
	if c == nil {
		return nil, errors.New("config is nil")
	}

	if c.FPS < 0 || math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) {
		return warnings, fmt.Errorf("fps must be a positive number, got %v", c.FPS)
	}
	if _, err := textenc.Lookup(c.Encoding); err != nil {
		return warnings, fmt.Errorf("encoding: %w", err)
	}
	if _, err := translate.ParseProvider(c.Translate.Provider); err != nil {
		return warnings, fmt.Errorf("translate.provider: %w", err)
	}

	if c.Translate.Concurrency > maxConcurrency {
		warnings = append(warnings, fmt.Sprintf(
			"translate.concurrency %d is high and may hit provider rate limits",
			c.Translate.Concurrency,
		))
	}
	if c.TMP.EndGuessBaseMs == 0 && c.TMP.EndGuessPerCharMs == 0 {
		warnings = append(warnings, "tmp end time estimate is zero; tmp events will have no duration")
	}

	for key, p := range map[string]string{
		"ffmpeg.ffmpeg_path":  c.FFmpeg.FFmpegPath,
		"ffmpeg.ffprobe_path": c.FFmpeg.FFprobePath,
	} {
		if p == "" {
			continue
		}
		info, serr := os.Stat(p)
		if serr != nil {
			if os.IsNotExist(serr) {
				warnings = append(warnings, fmt.Sprintf("%s not found: %s", key, p))
				continue
			}
			return warnings, fmt.Errorf("failed to check %s %s: %w", key, p, serr)
		}
		if info.IsDir() {
			return warnings, fmt.Errorf("%s is a directory: %s", key, p)
		}
	}

	return warnings, nil
}
