package media

// Processor runs ffmpeg and ffprobe on media files.
type Processor struct {
	bin     BinaryPaths
	tempDir string
}

// NewProcessor returns a processor using bin. Intermediate files go to
// tempDir, or the system temp directory when it is empty.
func NewProcessor(bin BinaryPaths, tempDir string) *Processor {
	return &Processor{
		bin:     bin,
		tempDir: tempDir,
	}
}
