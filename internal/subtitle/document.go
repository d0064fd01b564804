package subtitle

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var defaultInfo = [][2]string{
	{"WrapStyle", "0"},
	{"ScaledBorderAndShadow", "yes"},
	{"Collisions", "Normal"},
}

// Document is an ordered list of events together with a style table and
// free-form script metadata. A Document is not safe for concurrent use.
type Document struct {
	events []*Event
	styles *orderedmap.OrderedMap[string, Style]
	info   *orderedmap.OrderedMap[string, string]

	// FPS is the frame rate the document was read with, 0 if unknown.
	FPS float64
	// Format is the format the document was read from.
	Format Format
}

// New returns an empty document holding a Default style and default info.
func New() *Document {
	d := &Document{
		styles: orderedmap.New[string, Style](),
		info:   orderedmap.New[string, string](),
	}
	d.styles.Set("Default", DefaultStyle())
	for _, kv := range defaultInfo {
		d.info.Set(kv[0], kv[1])
	}
	return d
}

// ---- events ----

func (d *Document) Len() int {
	return len(d.events)
}

// At returns the event at index i. The pointer aliases the document's event.
func (d *Document) At(i int) *Event {
	return d.events[i]
}

// Events iterates over events in document order.
func (d *Document) Events() iter.Seq2[int, *Event] {
	return func(yield func(int, *Event) bool) {
		for i, ev := range d.events {
			if !yield(i, ev) {
				return
			}
		}
	}
}

func (d *Document) Append(evs ...*Event) error {
	for _, ev := range evs {
		if ev == nil {
			return fmt.Errorf("%w: nil event", ErrTypeMismatch)
		}
	}
	d.events = append(d.events, evs...)
	return nil
}

// Insert places ev before index i; i == Len() appends.
func (d *Document) Insert(i int, ev *Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrTypeMismatch)
	}
	if i < 0 || i > len(d.events) {
		return fmt.Errorf("%w: insert at %d (len %d)", ErrIndexOutOfRange, i, len(d.events))
	}
	d.events = slices.Insert(d.events, i, ev)
	return nil
}

func (d *Document) Set(i int, ev *Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrTypeMismatch)
	}
	if i < 0 || i >= len(d.events) {
		return fmt.Errorf("%w: set at %d (len %d)", ErrIndexOutOfRange, i, len(d.events))
	}
	d.events[i] = ev
	return nil
}

func (d *Document) Delete(i int) error {
	if i < 0 || i >= len(d.events) {
		return fmt.Errorf("%w: delete at %d (len %d)", ErrIndexOutOfRange, i, len(d.events))
	}
	d.events = slices.Delete(d.events, i, i+1)
	return nil
}

// Sort orders events by start, then end time. Equal events keep their order.
func (d *Document) Sort() {
	slices.SortStableFunc(d.events, func(a, b *Event) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
}

// ---- retiming ----

// Shift moves every event by delta, truncated to whole milliseconds.
func (d *Document) Shift(delta time.Duration) {
	ms := int(delta.Milliseconds())
	for _, ev := range d.events {
		ev.Start += ms
		ev.End += ms
	}
}

// ShiftFrames moves every event by a number of frames at fps.
func (d *Document) ShiftFrames(frames int, fps float64) error {
	ms, err := FramesToMs(frames, fps)
	if err != nil {
		return err
	}
	d.Shift(time.Duration(ms) * time.Millisecond)
	return nil
}

// TransformFramerate rescales all times by inFPS/outFPS. Both rates are
// checked before anything is changed.
func (d *Document) TransformFramerate(inFPS, outFPS float64) error {
	if _, err := Rescale(0, inFPS, outFPS); err != nil {
		return fmt.Errorf("cannot transform %v -> %v: %w", inFPS, outFPS, err)
	}
	for _, ev := range d.events {
		ev.Start, _ = Rescale(ev.Start, inFPS, outFPS)
		ev.End, _ = Rescale(ev.End, inFPS, outFPS)
	}
	return nil
}

// ---- styles ----

func (d *Document) Style(name string) (Style, bool) {
	return d.styles.Get(name)
}

// ResolveStyle returns the named style, or DefaultStyle if it is missing.
func (d *Document) ResolveStyle(name string) Style {
	if s, ok := d.styles.Get(name); ok {
		return s
	}
	return DefaultStyle()
}

// SetStyle adds or replaces a style.
func (d *Document) SetStyle(name string, s Style) error {
	if !validStyleName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
	}
	d.styles.Set(name, s)
	return nil
}

func (d *Document) DeleteStyle(name string) error {
	if _, ok := d.styles.Delete(name); !ok {
		return fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return nil
}

func (d *Document) StyleCount() int {
	return d.styles.Len()
}

// Styles iterates over the style table in insertion order.
func (d *Document) Styles() iter.Seq2[string, Style] {
	return func(yield func(string, Style) bool) {
		for p := d.styles.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

func (d *Document) StyleNames() []string {
	names := make([]string, 0, d.styles.Len())
	for name := range d.Styles() {
		names = append(names, name)
	}
	return names
}

// RenameStyle renames a style and every reference to it, including \r reset
// tags in event text. The document is unchanged when an error is returned.
func (d *Document) RenameStyle(oldName, newName string) error {
	style, ok := d.styles.Get(oldName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrStyleNotFound, oldName)
	}
	if _, taken := d.styles.Get(newName); taken {
		return fmt.Errorf("%w: %q", ErrStyleNameConflict, newName)
	}
	if !validStyleName(newName) {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, newName)
	}

	d.styles.Delete(oldName)
	d.styles.Set(newName, style)

	for _, ev := range d.events {
		if ev.Style == oldName {
			ev.Style = newName
		}
		ev.Text = renameResetTags(ev.Text, oldName, newName)
	}
	return nil
}

// ImportStyles copies every style of other into d. On a name collision d
// keeps its own style unless overwrite is set.
func (d *Document) ImportStyles(other *Document, overwrite bool) error {
	if other == nil {
		return fmt.Errorf("%w: nil document", ErrTypeMismatch)
	}
	for name, s := range other.Styles() {
		if _, exists := d.styles.Get(name); exists && !overwrite {
			continue
		}
		d.styles.Set(name, s)
	}
	return nil
}

// Fragments resolves ev's text through the tag parser, using ev's style (or
// the default style) as the base.
func (d *Document) Fragments(ev *Event) iter.Seq[Fragment] {
	return ParseTags(ev.Text, d.ResolveStyle(ev.Style), d)
}

// ---- info ----

func (d *Document) Info(key string) (string, bool) {
	return d.info.Get(key)
}

func (d *Document) SetInfo(key, value string) {
	d.info.Set(key, value)
}

func (d *Document) DeleteInfo(key string) {
	d.info.Delete(key)
}

// InfoEntries iterates over info in insertion order.
func (d *Document) InfoEntries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for p := d.info.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

func (d *Document) resetInfo() {
	d.info = orderedmap.New[string, string]()
}

func (d *Document) resetStyles() {
	d.styles = orderedmap.New[string, Style]()
}

// Equals compares info, styles (including order) and events.
func (d *Document) Equals(other *Document) bool {
	if other == nil {
		return false
	}
	if !equalOrdered(d.info, other.info) || !equalOrdered(d.styles, other.styles) {
		return false
	}
	return slices.EqualFunc(d.events, other.events, (*Event).Equals)
}

func equalOrdered[V comparable](a, b *orderedmap.OrderedMap[string, V]) bool {
	if a.Len() != b.Len() {
		return false
	}
	pa, pb := a.Oldest(), b.Oldest()
	for pa != nil && pb != nil {
		if pa.Key != pb.Key || pa.Value != pb.Value {
			return false
		}
		pa, pb = pa.Next(), pb.Next()
	}
	return true
}
