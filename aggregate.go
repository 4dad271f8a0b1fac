package sieve

import (
	"context"
	"strings"
)

// Validate runs schema against input and returns the parsed value unchanged on success.
//
// On rejection the issues are folded into one message: the first issue per field path wins,
// segments keep first-seen order, and the message ends with a period. Anything the schema
// cannot express as issues (including a panic) becomes DefaultMessage.
// The returned error is always a *ValidationError.
func Validate[T any](ctx context.Context, schema Schema[T], input any, opts Options) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, &ValidationError{Message: DefaultMessage}
		}
	}()

	res := schema.Validate(ctx, input)

	var zero T
	switch res.Outcome() {
	case OutcomeOK:
		return res.Value(), nil
	case OutcomeRejected:
		if msg := Aggregate(res.Issues(), opts); msg != "" {
			return zero, &ValidationError{Message: msg}
		}
	}
	return zero, &ValidationError{Message: DefaultMessage}
}

// Aggregate formats issues into the consolidated message used by Validate.
// It returns "" when there is nothing to report.
func Aggregate(issues Issues, opts Options) string {
	fields := newFieldErrors(len(issues))

	for _, issue := range issues {
		fieldPath := issue.Path.Join()
		if !fields.has(fieldPath) {
			fields.add(fieldPath, composeMessage(fieldPath, issue.Message))
		}
		if opts.EarlyExit && fields.len() == 1 {
			break
		}
	}

	msg := strings.TrimSpace(strings.Join(fields.messages, ", "))
	if msg != "" && !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

// composeMessage keeps msg verbatim when it already names fieldPath, otherwise quotes the
// path in front of it. The root path ("") is contained in every message.
func composeMessage(fieldPath, msg string) string {
	if strings.Contains(msg, fieldPath) {
		return msg
	}
	return "'" + fieldPath + "' " + msg
}

// fieldErrors is an insertion-ordered set of field paths with one message each.
type fieldErrors struct {
	seen     map[string]struct{}
	messages []string
}

func newFieldErrors(capacity int) *fieldErrors {
	return &fieldErrors{
		seen:     make(map[string]struct{}, capacity),
		messages: make([]string, 0, capacity),
	}
}

func (f *fieldErrors) has(path string) bool {
	_, ok := f.seen[path]
	return ok
}

func (f *fieldErrors) add(path, msg string) {
	f.seen[path] = struct{}{}
	f.messages = append(f.messages, msg)
}

func (f *fieldErrors) len() int {
	return len(f.messages)
}
