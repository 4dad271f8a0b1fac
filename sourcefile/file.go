package sourcefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/internal/decode"
)

// Options configures file source behavior.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false (returns empty map).
	Required bool
}

type fileSource struct {
	path string
	opts Options
}

// New creates a file-based source.
func New(path string, opts Options) sieve.Source {
	return &fileSource{
		path: path,
		opts: opts,
	}
}

// Load reads and parses the file, returning flattened dot-separated keys.
func (f *fileSource) Load(ctx context.Context) (map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if f.opts.Required {
				return nil, fmt.Errorf("required file not found: %s: %w", f.path, err)
			}
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("read file %s: %w", f.path, err)
	}

	format := f.opts.Format
	if format == "" {
		format = decode.FormatFromPath(f.path)
	}
	if format == "" {
		return nil, fmt.Errorf("unsupported file format for %s (supported: yaml, json, toml)", f.path)
	}

	raw, err := decode.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	return decode.Flatten(raw), nil
}

// Name returns a human-readable identifier for this source.
func (f *fileSource) Name() string {
	return "file:" + filepath.Base(f.path)
}
