package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mgpai22/subdoc/internal/subtitle"
)

var leadingTags = regexp.MustCompile(`^(?:\{[^}]*\})+`)

// DocumentOptions controls how translations are written back into a document.
type DocumentOptions struct {
	// Overlay keeps the original text on a second line below the translation.
	Overlay     bool
	Concurrency int
	Warner      subtitle.Warner
}

// TranslateDocument translates the visible text of doc in place and returns
// the number of events changed. Comments, drawings and events without
// visible text are left alone. Override blocks at the start of an event are
// kept out of the request and put back in front of the translation.
func TranslateDocument(
	ctx context.Context,
	t Translator,
	doc *subtitle.Document,
	opts DocumentOptions,
) (int, error) {
	type target struct {
		event  *subtitle.Event
		prefix string
		body   string
	}

	var (
		targets []target
		items   []TranslationItem
	)
	for _, ev := range doc.Events() {
		if ev.Comment || ev.IsDrawing(doc.ResolveStyle(ev.Style), doc) {
			continue
		}
		if strings.TrimSpace(ev.Plaintext()) == "" {
			continue
		}
		prefix := leadingTags.FindString(ev.Text)
		body := ev.Text[len(prefix):]

		items = append(items, TranslationItem{Index: len(targets), Text: body})
		targets = append(targets, target{event: ev, prefix: prefix, body: body})
	}
	if len(items) == 0 {
		return 0, nil
	}

	var (
		results []TranslationResult
		err     error
	)
	if ct, ok := t.(ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, opts.Concurrency)
	} else {
		results, err = t.Translate(ctx, items)
	}
	if err != nil {
		return 0, fmt.Errorf("translation failed: %w", err)
	}

	changed := 0
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(targets) {
			if opts.Warner != nil {
				opts.Warner.Warnw("Skipping invalid result index",
					"index", result.Index,
					"max", len(targets)-1,
				)
			}
			continue
		}

		tg := targets[result.Index]
		text := strings.ReplaceAll(strings.TrimSpace(result.Text), "\n", `\N`)
		if opts.Overlay {
			text += `\N` + tg.body
		}
		tg.event.Text = tg.prefix + text
		changed++
	}

	return changed, nil
}
