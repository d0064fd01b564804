// Package subtitle models a timed-text subtitle track and reads and writes
// it in several text formats.
//
// A Document holds events, a style table and script info. Event text uses
// SubStation conventions: {\...} override blocks, \N for a hard line break
// and \h for a hard space. Codecs translate between a format and that model;
// a Registry picks a codec by name, by file extension or by sniffing content.
package subtitle

// Format identifies a subtitle format.
type Format string

const (
	FormatASS      Format = "ass"
	FormatSSA      Format = "ssa"
	FormatSRT      Format = "srt"
	FormatVTT      Format = "vtt"
	FormatTMP      Format = "tmp"
	FormatMicroDVD Format = "microdvd"
)
