// Package config loads the users service configuration.
//
// Values come from an optional file (YAML, JSON or TOML) and from USERSD_ prefixed environment
// variables, with the environment winning. Nested keys use a double underscore in the
// environment: USERSD_SERVER__READ_TIMEOUT=10s sets server.read_timeout.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/sourceenv"
	"github.com/Azhovan/sieve/sourcefile"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "USERSD_"

// Config is the users service configuration.
type Config struct {
	Server     Server     `sieve:"name:server"`
	Log        Log        `sieve:"name:log"`
	Validation Validation `sieve:"name:validation"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr            string        `sieve:"name:addr,default::8080,min:1"`
	ReadTimeout     time.Duration `sieve:"name:read_timeout,default:5s,min:1ms"`
	WriteTimeout    time.Duration `sieve:"name:write_timeout,default:10s,min:1ms"`
	ShutdownTimeout time.Duration `sieve:"name:shutdown_timeout,default:15s,min:1ms,max:5m"`
}

// Log holds logger settings.
type Log struct {
	Level  string `sieve:"name:level,default:info,oneof:debug,info,warn,error"`
	Format string `sieve:"name:format,default:text,oneof:text,json"`
}

// Validation controls how request validation failures are reported.
type Validation struct {
	// EarlyExit reports only the first failing field per request.
	EarlyExit bool `sieve:"name:early_exit,default:false"`
}

// Options returns the sieve options derived from the configuration.
func (v Validation) Options() sieve.Options {
	return sieve.Options{EarlyExit: v.EarlyExit}
}

// Sources returns the configuration sources in precedence order.
// path may be empty, in which case only the environment is read.
func Sources(path string, dotEnvFiles ...string) sieve.Source {
	sources := make([]sieve.Source, 0, 2)
	if path != "" {
		sources = append(sources, sourcefile.New(path, sourcefile.Options{}))
	}
	sources = append(sources, sourceenv.New(sourceenv.Options{
		Prefix:      EnvPrefix,
		DotEnvFiles: dotEnvFiles,
	}))
	return sieve.Merge(sources...)
}

// Load reads and validates the configuration.
// Source errors are returned wrapped; invalid values produce one *sieve.ValidationError
// listing every offending key.
func Load(ctx context.Context, src sieve.Source) (*Config, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg, err := sieve.Validate(ctx, sieve.Struct[Config]().Coerce(true), data, sieve.Options{})
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
