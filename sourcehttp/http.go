// Package sourcehttp exposes the query string and body of an HTTP request as sieve sources.
//
// Example:
//
//	input, err := sieve.Validate(r.Context(), schema, sourcehttp.Body(r), sieve.Options{})
package sourcehttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/internal/decode"
)

// DefaultMaxBytes caps request bodies read by Body.
const DefaultMaxBytes int64 = 1 << 20

// ErrUnsupportedContentType is returned when a body's Content-Type has no decoder.
var ErrUnsupportedContentType = errors.New("sieve: unsupported content type")

// Options configures body decoding.
type Options struct {
	// MaxBytes limits how much of the body is read. Zero means DefaultMaxBytes.
	MaxBytes int64

	// Format overrides Content-Type detection ("json", "yaml", "toml", "form").
	Format string
}

type querySource struct {
	r *http.Request
}

// Query returns the request's URL query as a Source. Repeated parameters become lists.
func Query(r *http.Request) sieve.Source {
	return &querySource{r: r}
}

func (q *querySource) Load(ctx context.Context) (map[string]any, error) {
	return decode.FromValues(q.r.URL.Query()), nil
}

func (q *querySource) Name() string {
	return "query"
}

type bodySource struct {
	r    *http.Request
	opts Options

	once sync.Once
	data map[string]any
	err  error
}

// Body returns the request body as a Source, decoded according to its Content-Type.
// A missing Content-Type is treated as JSON and an empty body as an empty object.
// The body is read once; later loads return the same result.
func Body(r *http.Request) sieve.Source {
	return NewBody(r, Options{})
}

// NewBody is Body with explicit options.
func NewBody(r *http.Request, opts Options) sieve.Source {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &bodySource{r: r, opts: opts}
}

func (b *bodySource) Load(ctx context.Context) (map[string]any, error) {
	b.once.Do(func() {
		b.data, b.err = b.read()
	})
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[string]any, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out, nil
}

func (b *bodySource) read() (map[string]any, error) {
	format := b.opts.Format
	if format == "" {
		ct := b.r.Header.Get("Content-Type")
		format = decode.FormatFromContentType(ct)
		if format == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, ct)
		}
	}

	if b.r.Body == nil || b.r.Body == http.NoBody {
		return make(map[string]any), nil
	}

	data, err := io.ReadAll(io.LimitReader(b.r.Body, b.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > b.opts.MaxBytes {
		return nil, fmt.Errorf("read body: exceeds %d bytes", b.opts.MaxBytes)
	}

	return decode.Decode(format, data)
}

func (b *bodySource) Name() string {
	return "body"
}
