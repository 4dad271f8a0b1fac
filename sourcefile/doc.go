// Package sourcefile loads input from YAML, JSON, or TOML files.
//
// Format is auto-detected from extension (.yaml, .json, .toml).
//
// Example:
//
//	source := sourcefile.New("usersd.yaml", sourcefile.Options{Required: true})
//	cfg, err := sieve.Validate(ctx, sieve.Struct[Config](), source, sieve.Options{})
package sourcefile
