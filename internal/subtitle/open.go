package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open reads a UTF-8 subtitle file. The format is detected from the content;
// set opts or use Registry.Read directly to force one.
func Open(path string, reg *Registry, opts Options) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	doc, err := reg.Read(file, "", opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Save writes doc to path, creating parent directories. An empty format is
// taken from the file extension.
func Save(doc *Document, path string, reg *Registry, format Format, opts Options) error {
	if format == "" {
		f, err := reg.FormatFromExtension(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}

	if err := reg.Write(doc, file, format, opts); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
