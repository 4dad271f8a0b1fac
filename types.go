package sieve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Source provides raw input for a schema (request query, request body, env vars, files).
// Keys are dot-separated paths (e.g., "address.city"); nested maps are accepted as well.
type Source interface {
	// Load returns the input as a map. A source with nothing to offer returns an empty map.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in errors (e.g., "env", "file:config.yaml", "query").
	Name() string
}

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Segment is one element of an issue path: a field name or a list index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a field-name segment.
func Key(name string) Segment {
	return Segment{key: name}
}

// Index returns a list-index segment.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment addresses a list element.
func (s Segment) IsIndex() bool {
	return s.isIndex
}

// String renders the segment the way it appears in a joined path.
func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path locates an issue inside the input. An empty path addresses the whole value.
type Path []Segment

// PathOf builds a Path from strings (field names) and ints (indexes).
// Any other value is rendered with fmt and treated as a field name.
func PathOf(parts ...any) Path {
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			p = append(p, Key(v))
		case int:
			p = append(p, Index(v))
		case Segment:
			p = append(p, v)
		default:
			p = append(p, Key(fmt.Sprint(v)))
		}
	}
	return p
}

// Join renders the path with "." between segments ("items.0.price").
// The empty path renders as "".
func (p Path) Join() string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].String()
	}

	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Append returns a new path with seg added; p is left untouched.
func (p Path) Append(seg ...Segment) Path {
	out := make(Path, 0, len(p)+len(seg))
	out = append(out, p...)
	return append(out, seg...)
}

// Outcome tags a schema Result.
type Outcome int

const (
	// OutcomeUnknown is the zero Result; the aggregator treats it as an opaque failure.
	OutcomeUnknown Outcome = iota
	// OutcomeOK carries the parsed value.
	OutcomeOK
	// OutcomeRejected carries the ordered issue list.
	OutcomeRejected
	// OutcomeFailed carries an error the schema could not express as issues.
	OutcomeFailed
)

// String returns a lowercase name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a Schema returns: OK(value), Rejected(issues) or Failed(err).
type Result[T any] struct {
	value   T
	issues  Issues
	err     error
	outcome Outcome
}

// Accept builds a successful Result.
func Accept[T any](v T) Result[T] {
	return Result[T]{value: v, outcome: OutcomeOK}
}

// Reject builds a Result carrying issues in discovery order.
func Reject[T any](issues ...Issue) Result[T] {
	return Result[T]{issues: append(Issues(nil), issues...), outcome: OutcomeRejected}
}

// Fail builds a Result for a failure that is not a structured rejection.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err, outcome: OutcomeFailed}
}

// Outcome reports which variant r holds.
func (r Result[T]) Outcome() Outcome {
	return r.outcome
}

// Value returns the parsed value (zero unless OutcomeOK).
func (r Result[T]) Value() T {
	return r.value
}

// Issues returns the rejection issues (nil unless OutcomeRejected).
func (r Result[T]) Issues() Issues {
	return r.issues
}

// Err returns the opaque failure (nil unless OutcomeFailed).
func (r Result[T]) Err() error {
	return r.err
}

// Schema validates untrusted input and produces a typed value or a structured rejection.
// Implementations must be safe for concurrent use: Validate must not mutate the schema.
type Schema[T any] interface {
	Validate(ctx context.Context, input any) Result[T]
}

// SchemaFunc is a function adapter for the Schema interface.
type SchemaFunc[T any] func(ctx context.Context, input any) Result[T]

func (f SchemaFunc[T]) Validate(ctx context.Context, input any) Result[T] {
	return f(ctx, input)
}

// Refiner performs checks after binding succeeded.
// Use for cross-field, semantic, or external validation.
type Refiner[T any] interface {
	// Refine checks the bound value. Return Issues for field-level problems.
	Refine(ctx context.Context, v *T) error
}

// RefinerFunc is a function adapter for the Refiner interface.
type RefinerFunc[T any] func(ctx context.Context, v *T) error

func (f RefinerFunc[T]) Refine(ctx context.Context, v *T) error {
	return f(ctx, v)
}

// Options configures Validate.
type Options struct {
	// EarlyExit reports only the first distinct field path instead of all of them.
	EarlyExit bool
}
