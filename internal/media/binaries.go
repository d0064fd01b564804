package media

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	EnvFFmpegPath  = "SUBDOC_FFMPEG_PATH"
	EnvFFprobePath = "SUBDOC_FFPROBE_PATH"
)

var ErrBinaryNotFound = errors.New("binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// ResolveBinaries locates ffmpeg and ffprobe. Explicit paths win, then the
// SUBDOC_FFMPEG_PATH and SUBDOC_FFPROBE_PATH variables, then PATH.
func ResolveBinaries(ffmpegPath, ffprobePath string) (BinaryPaths, error) {
	ffmpeg, err := resolve("ffmpeg", ffmpegPath, EnvFFmpegPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobe, err := resolve("ffprobe", ffprobePath, EnvFFprobePath)
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}

func resolve(name, configured, envVar string) (string, error) {
	if configured == "" {
		configured = os.Getenv(envVar)
	}
	if configured != "" {
		if !fileExists(configured) {
			return "", fmt.Errorf("%w: %s at %s", ErrBinaryNotFound, name, configured)
		}
		return configured, nil
	}

	found, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not in PATH (set %s)", ErrBinaryNotFound, name, envVar)
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
