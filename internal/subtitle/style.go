package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color. A is transparency as in SubStation: 0 is opaque.
type Color struct {
	R, G, B, A uint8
}

// parseColor reads &HAABBGGRR / &HBBGGRR hex or the decimal form older SSA
// files use.
func parseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(strings.ToUpper(s), "&H") {
		hex := strings.TrimSuffix(s[2:], "&")
		v, err = strconv.ParseUint(hex, 16, 32)
	} else {
		var n int64
		n, err = strconv.ParseInt(s, 10, 64)
		v = uint64(uint32(n))
	}
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		A: uint8(v >> 24),
	}, nil
}

func (c Color) substation() string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", c.A, c.B, c.G, c.R)
}

// Alignment is a numpad position (1 bottom-left .. 9 top-right).
type Alignment int

var ssaToASSAlignment = map[int]Alignment{
	1: 1, 2: 2, 3: 3,
	5: 7, 6: 8, 7: 9,
	9: 4, 10: 5, 11: 6,
}

func alignmentFromSSA(v int) Alignment {
	if a, ok := ssaToASSAlignment[v]; ok {
		return a
	}
	return 2
}

func (a Alignment) ssa() int {
	for ssa, ass := range ssaToASSAlignment {
		if ass == a {
			return ssa
		}
	}
	return 2
}

// Style is a named formatting record. It holds only scalar fields, so plain
// assignment yields an independent copy and == compares field-wise.
type Style struct {
	Fontname       string
	Fontsize       float64
	PrimaryColor   Color
	SecondaryColor Color
	OutlineColor   Color
	BackColor      Color
	Bold           bool
	Italic         bool
	Underline      bool
	Strikeout      bool
	ScaleX         float64
	ScaleY         float64
	Spacing        float64
	Angle          float64
	BorderStyle    int
	Outline        float64
	Shadow         float64
	Alignment      Alignment
	MarginL        int
	MarginR        int
	MarginV        int
	AlphaLevel     int
	Encoding       int
	// Drawing marks text as vector drawing commands. It is never set by a
	// style line; the \p override tag turns it on.
	Drawing bool
}

var defaultStyle = Style{
	Fontname:       "Arial",
	Fontsize:       20,
	PrimaryColor:   Color{R: 255, G: 255, B: 255},
	SecondaryColor: Color{R: 255},
	OutlineColor:   Color{},
	BackColor:      Color{},
	ScaleX:         100,
	ScaleY:         100,
	BorderStyle:    1,
	Outline:        2,
	Shadow:         2,
	Alignment:      2,
	MarginL:        10,
	MarginR:        10,
	MarginV:        10,
	Encoding:       1,
}

// DefaultStyle returns the style used when a reference cannot be resolved.
func DefaultStyle() Style {
	return defaultStyle
}

// validStyleName reports whether name can be serialized as a SubStation
// field.
func validStyleName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ",\n\r")
}
