package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TimestampPattern describes one textual clock grammar. The regexp must
// capture hours, minutes, seconds and an optional fraction, in that order.
type TimestampPattern struct {
	Name string
	// Max is the largest representable time in milliseconds, 0 if unbounded.
	Max    int
	re     *regexp.Regexp
	layout func(h, m, s, ms int) string
}

var (
	// TimestampShort is H:MM:SS without a fraction, as used by TMP.
	TimestampShort = TimestampPattern{
		Name: "short",
		Max:  MakeTime(99, 59, 59, 0),
		re:   regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})()$`),
		layout: func(h, m, s, _ int) string {
			return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		},
	}

	// TimestampSubRip is HH:MM:SS,mmm. A dot separator is accepted on input.
	TimestampSubRip = TimestampPattern{
		Name: "subrip",
		Max:  MakeTime(99, 59, 59, 999),
		re:   regexp.MustCompile(`^(\d{1,3}):(\d{1,2}):(\d{1,2})[,.](\d{1,3})$`),
		layout: func(h, m, s, ms int) string {
			return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
		},
	}

	// TimestampWebVTT is [HH:]MM:SS.mmm.
	TimestampWebVTT = TimestampPattern{
		Name: "webvtt",
		Max:  MakeTime(99, 59, 59, 999),
		re:   regexp.MustCompile(`^(?:(\d{1,3}):)?(\d{2}):(\d{2})\.(\d{3})$`),
		layout: func(h, m, s, ms int) string {
			return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
		},
	}

	// TimestampSubStation is H:MM:SS.cc (centiseconds). Hours are unbounded.
	TimestampSubStation = TimestampPattern{
		Name: "substation",
		re:   regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2})[.:](\d{1,3})$`),
		layout: func(h, m, s, ms int) string {
			return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
		},
	}
)

// MakeTime converts a clock reading to milliseconds.
func MakeTime(h, m, s, ms int) int {
	return ((h*60+m)*60+s)*1000 + ms
}

func msToTimes(ms int) (h, m, s, rest int) {
	h, ms = ms/3600000, ms%3600000
	m, ms = ms/60000, ms%60000
	s, rest = ms/1000, ms%1000
	return h, m, s, rest
}

// ParseTimestamp parses text according to p and returns milliseconds.
func ParseTimestamp(text string, p TimestampPattern) (int, error) {
	groups := p.re.FindStringSubmatch(strings.TrimSpace(text))
	if groups == nil {
		return 0, fmt.Errorf("%w: %q is not a %s timestamp", ErrMalformedTimestamp, text, p.Name)
	}

	var parts [3]int
	for i := range parts {
		if groups[i+1] == "" {
			continue
		}
		v, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrMalformedTimestamp, text, err)
		}
		parts[i] = v
	}

	return MakeTime(parts[0], parts[1], parts[2], fractionToMs(groups[4])), nil
}

// fractionToMs reads a decimal fraction of a second: "5" is 500 ms,
// "05" is 50 ms, "005" is 5 ms.
func fractionToMs(frac string) int {
	if frac == "" {
		return 0
	}
	for len(frac) < 3 {
		frac += "0"
	}
	v, _ := strconv.Atoi(frac[:3])
	return v
}

// FormatTimestamp renders ms with p. Negative times become zero; times past
// p.Max are clamped and reported through w.
func FormatTimestamp(ms int, p TimestampPattern, w Warner) string {
	if ms < 0 {
		ms = 0
	}
	if p.Max > 0 && ms > p.Max {
		warn(w, "timestamp overflow, clamping to maximum representable time",
			"pattern", p.Name,
			"ms", ms,
			"max", p.Max,
		)
		ms = p.Max
	}
	h, m, s, rest := msToTimes(ms)
	return p.layout(h, m, s, rest)
}

func checkFramerate(fps float64) error {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFramerate, fps)
	}
	return nil
}

// FramesToMs converts a frame number at fps to milliseconds.
func FramesToMs(frames int, fps float64) (int, error) {
	if err := checkFramerate(fps); err != nil {
		return 0, err
	}
	return int(math.Round(float64(frames) / fps * 1000)), nil
}

// MsToFrames converts milliseconds to a frame number at fps.
func MsToFrames(ms int, fps float64) (int, error) {
	if err := checkFramerate(fps); err != nil {
		return 0, err
	}
	return int(math.Round(float64(ms) / 1000 * fps)), nil
}

// Rescale maps a time by the ratio inFPS/outFPS. It fixes documents that were
// converted from frames with a wrongly assumed frame rate.
func Rescale(ms int, inFPS, outFPS float64) (int, error) {
	if err := checkFramerate(inFPS); err != nil {
		return 0, err
	}
	if err := checkFramerate(outFPS); err != nil {
		return 0, err
	}
	return int(math.Round(float64(ms) * inFPS / outFPS)), nil
}
