package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrNoVideoStream = errors.New("no video stream")

// Info describes a media file as reported by ffprobe.
type Info struct {
	Path      string
	Duration  time.Duration
	FrameRate float64
	Width     int
	Height    int
	Codec     string
	Subtitles []SubtitleStream
}

// SubtitleStream is one embedded subtitle track. Index counts subtitle
// streams only, as ffmpeg's 0:s:N stream specifier does.
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
	Title    string
}

type probeOutput struct {
	Streams []struct {
		CodecType    string            `json:"codec_type"`
		CodecName    string            `json:"codec_name"`
		Width        int               `json:"width"`
		Height       int               `json:"height"`
		RFrameRate   string            `json:"r_frame_rate"`
		AvgFrameRate string            `json:"avg_frame_rate"`
		Tags         map[string]string `json:"tags"`
		Disposition  map[string]int    `json:"disposition"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on path.
func (p *Processor) Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, p.bin.FFprobe,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out)
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

// ProbeFrameRate returns the frame rate of the first video stream.
func (p *Processor) ProbeFrameRate(ctx context.Context, path string) (float64, error) {
	info, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	if info.FrameRate <= 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoVideoStream, path)
	}
	return info.FrameRate, nil
}

func parseProbe(data []byte) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if secs, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			// cover art is a video stream too
			if info.FrameRate > 0 || s.Disposition["attached_pic"] == 1 {
				continue
			}
			rate, err := parseFrameRate(s.RFrameRate)
			if err != nil {
				rate, err = parseFrameRate(s.AvgFrameRate)
			}
			if err != nil {
				continue
			}
			info.FrameRate = rate
			info.Width, info.Height = s.Width, s.Height
			info.Codec = s.CodecName
		case "subtitle":
			info.Subtitles = append(info.Subtitles, SubtitleStream{
				Index:    len(info.Subtitles),
				Codec:    s.CodecName,
				Language: s.Tags["language"],
				Title:    s.Tags["title"],
			})
		}
	}

	return info, nil
}

// parseFrameRate reads ffprobe's rational rates such as "24000/1001".
func parseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	d := 1.0
	if found {
		if d, err = strconv.ParseFloat(den, 64); err != nil {
			return 0, fmt.Errorf("invalid frame rate %q", s)
		}
	}
	if n <= 0 || d <= 0 {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return n / d, nil
}
