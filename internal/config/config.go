package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subdoc/internal/subtitle"
)

const (
	DefaultPath = "subdoc.yaml"
	// EnvPath names the environment variable selecting the config file.
	EnvPath = "SUBDOC_CONFIG"
)

// Config holds the settings that tune the subtitle codecs and the commands
// built on them.
type Config struct {
	SniffBudget int     `yaml:"sniff_budget"`
	Encoding    string  `yaml:"encoding"`
	ApplyStyles bool    `yaml:"apply_styles"`
	FPS         float64 `yaml:"fps"`

	TMP struct {
		EndGuessBaseMs    int `yaml:"end_guess_base_ms"`
		EndGuessPerCharMs int `yaml:"end_guess_per_char_ms"`
	} `yaml:"tmp"`

	MicroDVD struct {
		WriteFPSDeclaration bool `yaml:"write_fps_declaration"`
	} `yaml:"microdvd"`

	Reflow struct {
		MaxCharsPerLine  int `yaml:"max_chars_per_line"`
		MaxLinesPerEvent int `yaml:"max_lines_per_event"`
		MaxDurationMs    int `yaml:"max_duration_ms"`
	} `yaml:"reflow"`

	Translate struct {
		Provider    string `yaml:"provider"`
		Model       string `yaml:"model"`
		Concurrency int    `yaml:"concurrency"`
		BatchSize   int    `yaml:"batch_size"`
	} `yaml:"translate"`

	FFmpeg struct {
		FFmpegPath  string `yaml:"ffmpeg_path"`
		FFprobePath string `yaml:"ffprobe_path"`
	} `yaml:"ffmpeg"`

	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}

	c.SniffBudget = subtitle.DefaultSniffBudget
	c.Encoding = "utf-8"
	c.ApplyStyles = true

	c.TMP.EndGuessBaseMs = subtitle.DefaultTMPEndGuessBase
	c.TMP.EndGuessPerCharMs = subtitle.DefaultTMPEndGuessPerChar

	c.MicroDVD.WriteFPSDeclaration = true

	r := subtitle.NewReflower()
	c.Reflow.MaxCharsPerLine = r.MaxCharsPerLine
	c.Reflow.MaxLinesPerEvent = r.MaxLinesPerEvent
	c.Reflow.MaxDurationMs = r.MaxDuration

	c.Translate.Provider = "gemini"
	c.Translate.Concurrency = 3
	c.Translate.BatchSize = 50

	return c
}

// Load overlays the YAML file at path on the defaults. An empty path falls
// back to $SUBDOC_CONFIG and then to DefaultPath; only an explicitly named
// file has to exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Windows paths written with backslashes are not valid YAML escapes
	data = bytes.ReplaceAll(data, []byte(`\`), []byte(`/`))

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.normalize()

	return cfg, nil
}

// Path returns the file the configuration was loaded from, or "" when only
// defaults are in effect.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) normalize() {
	def := Default()

	c.Encoding = strings.ToLower(strings.TrimSpace(c.Encoding))
	if c.Encoding == "" {
		c.Encoding = def.Encoding
	}
	if c.SniffBudget <= 0 {
		c.SniffBudget = def.SniffBudget
	}

	if c.TMP.EndGuessBaseMs < 0 {
		c.TMP.EndGuessBaseMs = def.TMP.EndGuessBaseMs
	}
	if c.TMP.EndGuessPerCharMs < 0 {
		c.TMP.EndGuessPerCharMs = def.TMP.EndGuessPerCharMs
	}

	if c.Reflow.MaxCharsPerLine <= 0 {
		c.Reflow.MaxCharsPerLine = def.Reflow.MaxCharsPerLine
	}
	if c.Reflow.MaxLinesPerEvent <= 0 {
		c.Reflow.MaxLinesPerEvent = def.Reflow.MaxLinesPerEvent
	}
	if c.Reflow.MaxDurationMs < 0 {
		c.Reflow.MaxDurationMs = 0
	}

	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.Provider == "" {
		c.Translate.Provider = def.Translate.Provider
	}
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	if c.Translate.Concurrency <= 0 {
		c.Translate.Concurrency = def.Translate.Concurrency
	}
	if c.Translate.BatchSize <= 0 {
		c.Translate.BatchSize = def.Translate.BatchSize
	}

	c.FFmpeg.FFmpegPath = strings.TrimSpace(c.FFmpeg.FFmpegPath)
	c.FFmpeg.FFprobePath = strings.TrimSpace(c.FFmpeg.FFprobePath)
}

// Options returns the codec options described by the configuration. The
// caller attaches its own Warner.
func (c *Config) Options() subtitle.Options {
	opts := subtitle.DefaultOptions()
	opts.FPS = c.FPS
	opts.ApplyStyles = c.ApplyStyles
	opts.WriteFPSDeclaration = c.MicroDVD.WriteFPSDeclaration
	opts.SniffBudget = c.SniffBudget
	return opts
}

// Registry returns the built-in codecs with the TMP end-time estimate taken
// from the configuration.
func (c *Config) Registry() *subtitle.Registry {
	reg := subtitle.DefaultRegistry()
	reg.Register(&subtitle.TMPCodec{
		EndGuessBase:    c.TMP.EndGuessBaseMs,
		EndGuessPerChar: c.TMP.EndGuessPerCharMs,
	})
	return reg
}

func (c *Config) Reflower() *subtitle.Reflower {
	return &subtitle.Reflower{
		MaxCharsPerLine:  c.Reflow.MaxCharsPerLine,
		MaxLinesPerEvent: c.Reflow.MaxLinesPerEvent,
		MaxDuration:      c.Reflow.MaxDurationMs,
	}
}
