// Package sourceenv loads input from environment variables and optional .env files.
//
// Key normalization: FOO__BAR → foo.bar, FOO_BAR → foo_bar
//
// Example:
//
//	source := sourceenv.New(sourceenv.Options{Prefix: "APP_", DotEnvFiles: []string{".env"}})
//	cfg, err := sieve.Validate(ctx, sieve.Struct[Config]().Coerce(true), source, sieve.Options{})
package sourceenv
