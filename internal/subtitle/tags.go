package subtitle

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Fragment is a run of event text with the style in effect for it.
type Fragment struct {
	Text  string
	Style Style
}

// StyleLookup resolves style names referenced by \r tags.
type StyleLookup interface {
	Style(name string) (Style, bool)
}

var toggleTag = regexp.MustCompile(`^([ibusp])(\d*)$`)

// ParseTags splits SubStation event text into fragments. Override blocks
// ({...}) are folded onto base from left to right; each fragment carries the
// style accumulated so far. Unknown or malformed tags are ignored and an
// unterminated block is kept as literal text. Empty fragments are skipped.
//
// The sequence is recomputed from its arguments every time it is ranged over.
func ParseTags(text string, base Style, lookup StyleLookup) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		style := base
		pos := 0
		for _, loc := range overrideBlock.FindAllStringIndex(text, -1) {
			if loc[0] > pos {
				if !yield(Fragment{Text: text[pos:loc[0]], Style: style}) {
					return
				}
			}
			style = applyOverrides(text[loc[0]+1:loc[1]-1], style, base, lookup)
			pos = loc[1]
		}
		if pos < len(text) {
			yield(Fragment{Text: text[pos:], Style: style})
		}
	}
}

func applyOverrides(block string, style, base Style, lookup StyleLookup) Style {
	tags := strings.Split(block, `\`)
	// anything before the first backslash is a comment
	for _, tag := range tags[1:] {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		if tag[0] == 'r' {
			style = resetStyle(strings.TrimSpace(tag[1:]), base, lookup)
			continue
		}

		m := toggleTag.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		if m[2] == "" {
			// bare \i, \b ... revert to the base style's value
			switch m[1] {
			case "i":
				style.Italic = base.Italic
			case "b":
				style.Bold = base.Bold
			case "u":
				style.Underline = base.Underline
			case "s":
				style.Strikeout = base.Strikeout
			case "p":
				style.Drawing = false
			}
			continue
		}

		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		switch m[1] {
		case "i":
			style.Italic = n != 0
		case "b":
			// \b1 or a font weight
			style.Bold = n == 1 || n >= 700
		case "u":
			style.Underline = n != 0
		case "s":
			style.Strikeout = n != 0
		case "p":
			style.Drawing = n > 0
		}
	}
	return style
}

func resetStyle(name string, base Style, lookup StyleLookup) Style {
	if name == "" || lookup == nil {
		return base
	}
	if s, ok := lookup.Style(name); ok {
		return s
	}
	return base
}

// renameResetTags rewrites \r<old> references inside override blocks.
func renameResetTags(text, oldName, newName string) string {
	return overrideBlock.ReplaceAllStringFunc(text, func(block string) string {
		tags := strings.Split(block[1:len(block)-1], `\`)
		changed := false
		for i := 1; i < len(tags); i++ {
			tag := tags[i]
			if strings.HasPrefix(tag, "r") && strings.TrimSpace(tag[1:]) == oldName {
				tags[i] = "r" + newName
				changed = true
			}
		}
		if !changed {
			return block
		}
		return "{" + strings.Join(tags, `\`) + "}"
	})
}

var (
	htmlStyleTag = regexp.MustCompile(`< *(/?) *([bisuBISU]) *>`)
	htmlOtherTag = regexp.MustCompile(`< */? *[a-zA-Z][^>]*>`)
	breakRun     = regexp.MustCompile(`\n+`)
)

// htmlToTags turns <i>, <b>, <u>, <s> and their closers into override tags
// and strips any other HTML-like tag.
func htmlToTags(text string) string {
	text = htmlStyleTag.ReplaceAllStringFunc(text, func(tag string) string {
		m := htmlStyleTag.FindStringSubmatch(tag)
		state := "1"
		if m[1] == "/" {
			state = "0"
		}
		return `{\` + strings.ToLower(m[2]) + state + "}"
	})
	return htmlOtherTag.ReplaceAllString(text, "")
}

type flattenOptions struct {
	applyStyles bool
	bold        bool
}

// flattenText resolves an event through the tag parser into plain text with
// real newlines, optionally wrapping styled fragments in HTML-like markup.
// Drawing fragments are dropped; drawing reports whether any were seen.
func flattenText(doc *Document, ev *Event, opts flattenOptions) (text string, drawing bool) {
	var sb strings.Builder
	for frag := range doc.Fragments(ev) {
		if frag.Style.Drawing {
			drawing = true
			continue
		}
		t := replaceControls(frag.Text)
		if opts.applyStyles && strings.TrimSpace(t) != "" {
			if opts.bold && frag.Style.Bold {
				t = "<b>" + t + "</b>"
			}
			if frag.Style.Italic {
				t = "<i>" + t + "</i>"
			}
			if frag.Style.Underline {
				t = "<u>" + t + "</u>"
			}
			if frag.Style.Strikeout {
				t = "<s>" + t + "</s>"
			}
		}
		sb.WriteString(t)
	}
	return strings.TrimSpace(breakRun.ReplaceAllString(sb.String(), "\n")), drawing
}
