package sourcefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/sieve"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_Load_YAML(t *testing.T) {
	path := writeTemp(t, "users.yaml", `
database:
  host: localhost
  port: 5432
  credentials:
    user: admin
server:
  address: 0.0.0.0
features:
  - feature1
  - feature2
`)

	data, err := New(path, Options{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "localhost", data["database.host"])
	assert.Equal(t, 5432, data["database.port"])
	assert.Equal(t, "admin", data["database.credentials.user"])
	assert.Equal(t, "0.0.0.0", data["server.address"])

	features, ok := data["features"].([]any)
	require.True(t, ok, "features should be an array")
	assert.Len(t, features, 2)
}

func TestFileSource_Load_JSON(t *testing.T) {
	path := writeTemp(t, "users.json", `{"database": {"host": "db.example.com", "port": 3306}}`)

	data, err := New(path, Options{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", data["database.host"])
	assert.Equal(t, float64(3306), data["database.port"]) // JSON numbers are float64
}

func TestFileSource_Load_TOML(t *testing.T) {
	path := writeTemp(t, "users.toml", `
[database]
host = "localhost"
port = 5432

[database.pool]
max_connections = 100
`)

	data, err := New(path, Options{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "localhost", data["database.host"])
	assert.Equal(t, int64(5432), data["database.port"])
	assert.Equal(t, int64(100), data["database.pool.max_connections"])
}

func TestFileSource_FormatInference(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{name: "yaml extension", filename: "c.yaml", content: "key: value"},
		{name: "yml extension", filename: "c.yml", content: "key: value"},
		{name: "json extension", filename: "c.json", content: `{"key": "value"}`},
		{name: "toml extension", filename: "c.toml", content: `key = "value"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.filename, tt.content)
			data, err := New(path, Options{}).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"key": "value"}, data)
		})
	}
}

func TestFileSource_ExplicitFormat(t *testing.T) {
	path := writeTemp(t, "config.txt", "key: value")

	data, err := New(path, Options{Format: "yaml"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "value", data["key"])
}

func TestFileSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		opts     Options
		wantErr  string
	}{
		{name: "invalid yaml", filename: "bad.yaml", content: "key: value\n\t\tinvalid: [unclosed", wantErr: "parse YAML"},
		{name: "invalid json", filename: "bad.json", content: `{"key": "value"`, wantErr: "parse JSON"},
		{name: "invalid toml", filename: "bad.toml", content: "[section\nkey = \"value\"", wantErr: "parse TOML"},
		{name: "unsupported extension", filename: "config.txt", content: "some content", wantErr: "unsupported file format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.filename, tt.content)
			data, err := New(path, tt.opts).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, data)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	data, err := New(missing, Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data, "should return empty map for missing non-required file")

	data, err = New(missing, Options{Required: true}).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "required file not found")
}

func TestFileSource_EmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.yaml", "")

	data, err := New(path, Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileSource_Name(t *testing.T) {
	assert.Equal(t, "file:usersd.yaml", New("/etc/usersd/usersd.yaml", Options{}).Name())
}

func TestFileSource_Validate(t *testing.T) {
	type Config struct {
		Server struct {
			Addr         string `sieve:"required"`
			ReadTimeout  string `sieve:"name:readtimeout,default:5s"`
			MaxBodyBytes int    `sieve:"name:maxbodybytes,min:1"`
		}
	}

	path := writeTemp(t, "usersd.yaml", `
server:
  addr: ":8080"
  maxBodyBytes: 0
`)

	_, err := sieve.Validate(context.Background(), sieve.Struct[Config](), New(path, Options{}), sieve.Options{})
	require.Error(t, err)
	assert.Equal(t, "'server.maxbodybytes' Number must be greater than or equal to 1.", err.Error())
}
