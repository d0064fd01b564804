// Package textenc converts subtitle files between their on-disk character
// encoding and the UTF-8 text the subtitle codecs work on.
package textenc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const DefaultEncoding = "utf-8"

var ErrUnknownEncoding = errors.New("unknown character encoding")

// Lookup resolves an encoding label. WHATWG labels are tried first, then
// IANA names. An empty label means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == DefaultEncoding || name == "utf8" {
		return unicode.UTF8, nil
	}

	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// IsUTF8 reports whether name denotes UTF-8.
func IsUTF8(name string) bool {
	enc, err := Lookup(name)
	return err == nil && enc == unicode.UTF8
}

// NewReader decodes r from the named encoding into UTF-8. A leading byte
// order mark overrides the name and is removed.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// NewWriter encodes UTF-8 written to it into the named encoding. Runes the
// target cannot represent are replaced. Close flushes pending output and
// does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
