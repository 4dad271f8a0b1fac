package sourcehttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/sieve"
)

func TestQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users?name=Al&tag=a&tag=b", nil)

	src := Query(r)
	assert.Equal(t, "query", src.Name())

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Al", "tag": []any{"a", "b"}}, got)
}

func TestBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        map[string]any
		wantErr     string
	}{
		{
			name:        "json",
			contentType: "application/json; charset=utf-8",
			body:        `{"name":"Al","age":30}`,
			want:        map[string]any{"name": "Al", "age": float64(30)},
		},
		{
			name: "missing content type defaults to json",
			body: `{"name":"Al"}`,
			want: map[string]any{"name": "Al"},
		},
		{
			name:        "yaml",
			contentType: "application/yaml",
			body:        "name: Al\nage: 30\n",
			want:        map[string]any{"name": "Al", "age": 30},
		},
		{
			name:        "toml",
			contentType: "application/toml",
			body:        `name = "Al"`,
			want:        map[string]any{"name": "Al"},
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Al&age=30",
			want:        map[string]any{"name": "Al", "age": "30"},
		},
		{
			name:        "empty body",
			contentType: "application/json",
			body:        "",
			want:        map[string]any{},
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        `{"name":`,
			wantErr:     "parse JSON",
		},
		{
			name:        "unsupported content type",
			contentType: "text/csv",
			body:        "name,age",
			wantErr:     "unsupported content type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			got, err := Body(r).Load(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBody_ReadOnce(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	src := Body(r)

	first, err := src.Load(context.Background())
	require.NoError(t, err)
	first["a"] = "mutated"

	second, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1), second["a"])
}

func TestBody_Limit(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))

	_, err := NewBody(r, Options{MaxBytes: 16}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestBody_UnsupportedSentinel(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	r.Header.Set("Content-Type", "image/png")

	_, err := Body(r).Load(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedContentType))
}

func TestBody_Validate(t *testing.T) {
	type patch struct {
		Name sieve.Optional[string] `sieve:"min:2"`
		Age  sieve.Optional[int]    `sieve:"min:0"`
	}
	schema := sieve.Struct[patch]()
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodPatch, "/users/1", strings.NewReader(`{"age":"old","nmae":"x"}`))
	_, err := sieve.Validate(ctx, schema, Body(r), sieve.Options{})
	assert.EqualError(t, err, "'age' Expected number, received string, Unrecognized key(s) in object: 'nmae'.")

	r = httptest.NewRequest(http.MethodPatch, "/users/1", strings.NewReader(`{"name":`))
	_, err = sieve.Validate(ctx, schema, Body(r), sieve.Options{})
	assert.EqualError(t, err, sieve.DefaultMessage)
}
