package sieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	data := map[string]any{"name": "Ada"}
	src := Map("defaults", data)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "defaults", src.Name())

	got["name"] = "changed"
	assert.Equal(t, "Ada", data["name"], "Load returns a copy")
}

func TestMerge(t *testing.T) {
	file := Map("file", map[string]any{
		"server": map[string]any{"addr": ":8080", "readTimeout": "5s"},
		"log":    map[string]any{"level": "info"},
	})
	env := Map("env", map[string]any{
		"server.addr": ":9090",
		"LOG.LEVEL":   "debug",
	})

	merged := Merge(file, env)
	assert.Equal(t, "merge", merged.Name())

	got, err := merged.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"server.addr":        ":9090",
		"server.readTimeout": "5s",
		"LOG.LEVEL":          "debug",
	}, got)
}

func TestMerge_Errors(t *testing.T) {
	boom := errors.New("permission denied")

	_, err := Merge(Map("ok", nil), failingSource{err: boom}).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load source broken")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Merge(Map("ok", nil)).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerge_Validate(t *testing.T) {
	type Config struct {
		Server struct {
			Addr string `sieve:"required"`
			Port int    `sieve:"min:1,max:65535"`
		}
	}

	src := Merge(
		Map("defaults", map[string]any{"server": map[string]any{"addr": ":8080", "port": 8080}}),
		Map("override", map[string]any{"server.port": "0"}),
	)

	_, err := Validate(context.Background(), Struct[Config]().Coerce(true), src, Options{})
	assert.EqualError(t, err, "'server.port' Number must be greater than or equal to 1.")
}
