package sourceenv

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/internal/normalize"
)

// Options configures environment variable source behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before normalization).
	// Empty = load all vars.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	// Keys are always normalized to lowercase after prefix stripping.
	CaseSensitive bool

	// DotEnvFiles are read in order before the process environment.
	// Later files override earlier ones and the process environment overrides all of them.
	// Missing files are an error.
	DotEnvFiles []string
}

type envSource struct {
	opts Options
}

// New creates an environment variable source.
func New(opts Options) sieve.Source {
	return &envSource{opts: opts}
}

// Load scans .env files and the environment, filters by prefix, and normalizes keys.
func (e *envSource) Load(ctx context.Context) (map[string]any, error) {
	vars := make(map[string]string)

	for _, path := range e.opts.DotEnvFiles {
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read dotenv %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		vars[key] = value
	}

	result := make(map[string]any)
	for key, value := range vars {
		key, ok := e.stripPrefix(key)
		if !ok || key == "" {
			continue
		}

		// Normalize: FOO__BAR → foo.bar
		result[normalize.ToLowerDotPath(key)] = value
	}

	return result, nil
}

func (e *envSource) stripPrefix(key string) (string, bool) {
	if e.opts.Prefix == "" {
		return key, true
	}

	var hasPrefix bool
	if e.opts.CaseSensitive {
		hasPrefix = strings.HasPrefix(key, e.opts.Prefix)
	} else {
		hasPrefix = strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(e.opts.Prefix))
	}
	if !hasPrefix {
		return "", false
	}
	return key[len(e.opts.Prefix):], true
}

// Name returns "env" or "env:<prefix>".
func (e *envSource) Name() string {
	if e.opts.Prefix == "" {
		return "env"
	}
	return "env:" + e.opts.Prefix
}
