// Package sieve validates untrusted input against a schema and reports failures as one
// client-facing message classified as 400 Bad Request.
//
// Quick Start:
//
//	type CreateUser struct {
//	    Name string `sieve:"required,min:2"`
//	    Age  int    `sieve:"required,min:0"`
//	}
//
//	schema := sieve.Struct[CreateUser]().Coerce(true)
//
//	user, err := sieve.Validate(ctx, schema, r.URL.Query(), sieve.Options{})
//	// err.Error() == "'age' Required." when age is missing
//
// Any Schema[T] works with Validate; issues are deduplicated per field path (first one wins),
// messages that do not mention their path are prefixed with it, and everything is joined
// with ", " and terminated with a period. Failures that carry no issues become "Validation failed".
//
// Tag directives: name:key, default:val, required, min:N, max:N, oneof:a,b,c. Use "-" to skip a field.
//
// Inputs can come from maps, url.Values or any Source (see sourceenv, sourcefile, sourcehttp).
// The playground package adapts go-playground/validator struct tags to Schema[T].
package sieve
