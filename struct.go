package sieve

import (
	"context"
	"fmt"
	"net/url"
	"reflect"

	"github.com/Azhovan/sieve/internal/decode"
)

// StructSchema binds untrusted input onto a struct type T using `sieve` tags.
//
// Input may be a map[string]any (as decoded from JSON/YAML/TOML), url.Values, a Source, or nil.
// Keys are matched case-insensitively and dotted keys ("server.addr") address nested structs.
// Binding issues, tag rule issues and strict-mode issues are reported in field order.
// Refiners run only when everything else passed.
//
// A StructSchema is safe for concurrent use once configured.
type StructSchema[T any] struct {
	refiners []Refiner[T]
	strict   bool // Reject unknown keys (default: true)
	coerce   bool // Parse numbers and booleans from strings (default: false)
}

// Struct creates a schema for T with strict mode enabled and coercion disabled.
func Struct[T any]() *StructSchema[T] {
	return &StructSchema[T]{
		refiners: make([]Refiner[T], 0),
		strict:   true,
	}
}

// Strict controls whether unknown keys are rejected. Default: true.
func (s *StructSchema[T]) Strict(strict bool) *StructSchema[T] {
	s.strict = strict
	return s
}

// Coerce controls whether string input is parsed into numbers, booleans and lists.
// Enable it for query strings, form bodies and environment variables.
func (s *StructSchema[T]) Coerce(coerce bool) *StructSchema[T] {
	s.coerce = coerce
	return s
}

// WithRefiner adds a refiner. Refiners run in the order they were added.
func (s *StructSchema[T]) WithRefiner(r Refiner[T]) *StructSchema[T] {
	s.refiners = append(s.refiners, r)
	return s
}

// Validate implements Schema.
func (s *StructSchema[T]) Validate(ctx context.Context, input any) Result[T] {
	var out T
	target := reflect.ValueOf(&out).Elem()
	if target.Kind() != reflect.Struct {
		return Fail[T](fmt.Errorf("sieve: Struct requires a struct type, got %s", target.Type()))
	}

	obj, err := toObject(ctx, input)
	if err != nil {
		return Fail[T](err)
	}
	if obj == nil {
		received := receivedName(input)
		return Reject[T](Issue{
			Code:    CodeInvalidType,
			Message: "Expected object, received " + received,
			Params:  map[string]any{"expected": "object", "received": received},
		})
	}

	b := &binder{coerce: s.coerce, strict: s.strict}
	b.bindStruct(target, obj, nil)
	if b.err != nil {
		return Fail[T](b.err)
	}
	if len(b.issues) > 0 {
		return Reject[T](b.issues...)
	}

	for i, r := range s.refiners {
		err := r.Refine(ctx, &out)
		if err == nil {
			continue
		}
		if iss, ok := AsIssues(err); ok {
			if len(iss) == 0 {
				continue
			}
			return Reject[T](iss...)
		}
		return Fail[T](fmt.Errorf("refiner %d: %w", i, err))
	}

	return Accept(out)
}

// toObject normalizes supported inputs into an expanded object. Key case is preserved.
// It returns (nil, nil) when input is not object-shaped.
func toObject(ctx context.Context, input any) (map[string]any, error) {
	switch in := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return decode.Expand(in), nil
	case map[string]string:
		m := make(map[string]any, len(in))
		for k, v := range in {
			m[k] = v
		}
		return decode.Expand(m), nil
	case url.Values:
		return decode.Expand(decode.FromValues(in)), nil
	case Source:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := in.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", in.Name(), err)
		}
		return decode.Expand(data), nil
	default:
		return nil, nil
	}
}
