package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Registry maps format identifiers and file extensions to codecs.
type Registry struct {
	codecs     []Codec
	byFormat   map[Format]Codec
	extensions map[string]Format
	formatExt  map[Format]string
}

func NewRegistry() *Registry {
	return &Registry{
		byFormat:   make(map[Format]Codec),
		extensions: make(map[string]Format),
		formatExt:  make(map[Format]string),
	}
}

// DefaultRegistry returns a registry with every built-in codec.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&SubStationCodec{})
	r.Register(&SubRipCodec{})
	r.Register(&WebVTTCodec{})
	r.Register(NewTMPCodec())
	r.Register(&MicroDVDCodec{})

	r.RegisterExtension(".ass", FormatASS)
	r.RegisterExtension(".ssa", FormatSSA)
	r.RegisterExtension(".srt", FormatSRT)
	r.RegisterExtension(".vtt", FormatVTT)
	r.RegisterExtension(".txt", FormatTMP)
	r.RegisterExtension(".tmp", FormatTMP)
	r.RegisterExtension(".sub", FormatMicroDVD)
	return r
}

// Register adds c for all its formats, replacing any codec previously
// registered for the same format.
func (r *Registry) Register(c Codec) {
	for _, f := range c.Formats() {
		if old, ok := r.byFormat[f]; ok {
			r.codecs = slices.DeleteFunc(r.codecs, func(x Codec) bool { return x == old })
		}
		r.byFormat[f] = c
	}
	r.codecs = append(r.codecs, c)
}

// RegisterExtension maps a file extension (with leading dot) to a format.
// The first extension registered for a format is the one used for output.
func (r *Registry) RegisterExtension(ext string, f Format) {
	ext = strings.ToLower(ext)
	r.extensions[ext] = f
	if _, ok := r.formatExt[f]; !ok {
		r.formatExt[f] = ext
	}
}

func (r *Registry) Codec(f Format) (Codec, error) {
	c, ok := r.byFormat[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return c, nil
}

// Formats returns every registered format identifier in registration order.
func (r *Registry) Formats() []Format {
	var out []Format
	for _, c := range r.codecs {
		out = append(out, c.Formats()...)
	}
	return out
}

func (r *Registry) FormatFromExtension(ext string) (Format, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := r.extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

func (r *Registry) ExtensionForFormat(f Format) (string, error) {
	ext, ok := r.formatExt[f]
	if !ok {
		return "", fmt.Errorf("%w: no extension for %q", ErrUnsupportedFormat, f)
	}
	return ext, nil
}

// Classify asks every codec to guess the format of prefix. Exactly one
// distinct answer is required.
func (r *Registry) Classify(prefix string) (Format, error) {
	var found []Format
	for _, c := range r.codecs {
		if f, ok := c.GuessFormat(prefix); ok && !slices.Contains(found, f) {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("%w: no codec recognized the content", ErrUnknownFormat)
	default:
		return "", fmt.Errorf("%w: multiple candidates %v", ErrUnknownFormat, found)
	}
}

// Parse reads a complete text in the given format into a new document.
func (r *Registry) Parse(text string, f Format, opts Options) (*Document, error) {
	return r.read(strings.NewReader(text), f, opts)
}

// Read parses r into a new document. With an empty format the whole input is
// buffered, its first opts.SniffBudget runes are classified and the buffer is
// then parsed in full; r therefore need not be seekable.
func (r *Registry) Read(src io.Reader, f Format, opts Options) (*Document, error) {
	if f != "" {
		return r.read(src, f, opts)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle content: %w", err)
	}
	text := string(data)

	f, err = r.Detect(text, opts)
	if err != nil {
		return nil, err
	}
	return r.Parse(text, f, opts)
}

// Detect classifies the first opts.SniffBudget runes of text.
func (r *Registry) Detect(text string, opts Options) (Format, error) {
	return r.Classify(sniffPrefix(text, opts.sniffBudget()))
}

func (r *Registry) read(src io.Reader, f Format, opts Options) (*Document, error) {
	c, err := r.Codec(f)
	if err != nil {
		return nil, err
	}
	doc := New()
	doc.Format = f
	doc.FPS = opts.FPS
	if err := c.Read(doc, src, f, opts); err != nil {
		return nil, err
	}
	return doc, nil
}

// Write serializes doc in format f.
func (r *Registry) Write(doc *Document, w io.Writer, f Format, opts Options) error {
	c, err := r.Codec(f)
	if err != nil {
		return err
	}
	return c.Write(doc, w, f, opts)
}

// String serializes doc in format f and returns the text.
func (r *Registry) String(doc *Document, f Format, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := r.Write(doc, &buf, f, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sniffPrefix(text string, runes int) string {
	n := 0
	for i := range text {
		if n == runes {
			return text[:i]
		}
		n++
	}
	return text
}
