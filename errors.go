package sieve

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// Issue codes.
const (
	CodeInvalidType      = "invalid_type"
	CodeInvalidString    = "invalid_string"
	CodeRequired         = "required"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeInvalidEnum      = "invalid_enum_value"
	CodeUnrecognizedKeys = "unrecognized_keys"
	CodeCustom           = "custom"
)

// DefaultMessage is reported when validation fails without usable field issues.
const DefaultMessage = "Validation failed"

// ErrValidationFailed matches every *ValidationError with errors.Is.
var ErrValidationFailed = errors.New("sieve: validation failed")

// Issue is a single validation failure reported by a schema.
type Issue struct {
	Path    Path   // Location inside the input; empty for whole-value failures
	Code    string // One of the Code constants, or a schema-specific code
	Message string // Human-readable description
	// Params carries structured parameters (e.g., {"min": 2}) for callers that render their own text.
	Params map[string]any
}

// IssueAt creates an Issue at p.
func IssueAt(p Path, code, msg string) Issue {
	return Issue{Path: p, Code: code, Message: msg}
}

// Issues is an ordered list of validation failures. It implements error so refiners can return it.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return "no issues"
	}
	const maxShown = 3

	var b strings.Builder
	for i, it := range iss {
		if i == maxShown {
			fmt.Fprintf(&b, "; ... (total %d)", len(iss))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s at %q: %s", it.Code, it.Path.Join(), it.Message)
	}
	return b.String()
}

// Paths returns the distinct joined paths in first-seen order.
func (iss Issues) Paths() []string {
	return lo.Uniq(lo.Map(iss, func(it Issue, _ int) string {
		return it.Path.Join()
	}))
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ValidationError is the single consolidated failure returned by Validate.
// Message is always non-empty and safe to show to the client.
type ValidationError struct {
	Message string
}

// Error returns the consolidated message.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidationFailed) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Status is the HTTP classification of a validation failure (400).
func (e *ValidationError) Status() int {
	return http.StatusBadRequest
}

// Code is the machine-friendly classification ("BAD_REQUEST").
func (e *ValidationError) Code() string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(e.Status()), " ", "_"))
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
