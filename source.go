package sieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azhovan/sieve/internal/decode"
)

type mapSource struct {
	name string
	data map[string]any
}

// Map wraps an in-memory map as a Source. The map is not copied; do not mutate it while in use.
func Map(name string, data map[string]any) Source {
	return &mapSource{name: name, data: data}
}

func (m *mapSource) Load(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *mapSource) Name() string {
	return m.name
}

type mergedSource struct {
	sources []Source
}

// Merge combines sources into one. Sources are loaded in order and later sources
// override earlier ones key by key. Keys are compared case-insensitively after flattening and
// keep the spelling of the source that set them last.
func Merge(sources ...Source) Source {
	return &mergedSource{sources: sources}
}

func (m *mergedSource) Load(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	spelling := make(map[string]string) // lowercase key -> key as last loaded
	for _, source := range m.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		for key, value := range decode.Flatten(data) {
			lower := strings.ToLower(key)
			if prev, ok := spelling[lower]; ok {
				delete(merged, prev)
			}
			spelling[lower] = key
			merged[key] = value
		}
	}
	return merged, nil
}

func (m *mergedSource) Name() string {
	return "merge"
}
