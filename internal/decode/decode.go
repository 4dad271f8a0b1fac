// Package decode turns raw documents (JSON, YAML, TOML, form bodies) into the
// map shapes sieve schemas consume, and converts between nested and dotted-key maps.
package decode

import (
	"bytes"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Azhovan/sieve/internal/normalize"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatForm = "form"
)

// Decode parses data in the given format into a map.
// Empty (or whitespace-only) data decodes to an empty map.
func Decode(format string, data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]any), nil
	}

	var raw map[string]any
	switch format {
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	case FormatForm:
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return FromValues(values), nil
	default:
		return nil, fmt.Errorf("unsupported format: %q (supported: yaml, json, toml, form)", format)
	}

	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

// FormatFromPath infers the format from a file extension. Returns "" when unknown.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return ""
	}
}

// FormatFromContentType maps a Content-Type header to a format.
// A missing header is treated as JSON; an unknown one returns "".
func FormatFromContentType(contentType string) string {
	if contentType == "" {
		return FormatJSON
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case mediaType == "application/yaml", mediaType == "application/x-yaml", mediaType == "text/yaml":
		return FormatYAML
	case mediaType == "application/toml":
		return FormatTOML
	case mediaType == "application/x-www-form-urlencoded":
		return FormatForm
	default:
		return ""
	}
}

// FromValues converts query or form values into a map.
// Single values stay strings; repeated keys become []any.
func FromValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			continue
		case 1:
			out[key] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			out[key] = list
		}
	}
	return out
}

// Flatten turns nested maps into dot-separated keys. Lists are kept as values.
func Flatten(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	flattenInto("", data, out)
	return out
}

func flattenInto(prefix string, value any, out map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 && prefix != "" {
			out[prefix] = v
			return
		}
		for key, val := range v {
			flattenInto(normalize.JoinKey(prefix, key), val, out)
		}
	case map[any]any:
		for key, val := range v {
			keyStr, ok := key.(string)
			if !ok {
				keyStr = fmt.Sprint(key)
			}
			flattenInto(normalize.JoinKey(prefix, keyStr), val, out)
		}
	default:
		if prefix != "" {
			out[prefix] = value
		}
	}
}

// Expand turns dotted top-level keys into nested maps. Keys keep their case; path segments
// that differ only in case share one object (the first spelling in sorted order wins).
// Keys inside nested values are data and are never split. The input is not modified.
func Expand(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		setPath(out, strings.Split(key, "."), data[key])
	}
	return out
}

func setPath(dst map[string]any, segs []string, value any) {
	cur := dst
	for _, seg := range segs[:len(segs)-1] {
		key, existing, ok := LookupKey(cur, seg)
		next, isMap := existing.(map[string]any)
		if !ok || !isMap {
			if !ok {
				key = seg
			}
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}

	last := segs[len(segs)-1]
	mergeInto(cur, last, normalizeValue(value))
}

// mergeInto sets dst[key] = value, merging object values into an existing object with a
// case-insensitively equal key.
func mergeInto(dst map[string]any, key string, value any) {
	src, ok := value.(map[string]any)
	if !ok {
		dst[key] = value
		return
	}
	existingKey, existing, found := LookupKey(dst, key)
	existingMap, isMap := existing.(map[string]any)
	if !found || !isMap {
		dst[key] = src
		return
	}
	for k, v := range src {
		mergeInto(existingMap, k, v)
	}
	dst[existingKey] = existingMap
}

// LookupKey finds key in m, preferring an exact match and otherwise the case-insensitive
// match that sorts first. It returns the key as stored.
func LookupKey(m map[string]any, key string) (string, any, bool) {
	if v, ok := m[key]; ok {
		return key, v, true
	}
	found := ""
	for k := range m {
		if strings.EqualFold(k, key) && (found == "" || k < found) {
			found = k
		}
	}
	if found == "" {
		return "", nil, false
	}
	return found, m[found], true
}

// normalizeValue copies maps and lists into map[string]any and []any shapes so nested
// objects bind uniformly. Keys are kept as they are.
func normalizeValue(value any) any {
	if m, ok := asStringMap(value); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = normalizeValue(v)
		}
		return out
	}
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(list))
	for i, el := range list {
		out[i] = normalizeValue(el)
	}
	return out
}

func asStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
