// Package middleware holds the transport-neutral pieces shared by the HTTP integrations:
// typed context storage for validated values and the JSON error payload.
package middleware

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/sourcehttp"
)

// ctxKeyValue is a typed context key. A generic struct type keeps keys unique per T.
type ctxKeyValue[T any] struct{}

// ContextWithValue attaches a validated T to the context.
func ContextWithValue[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyValue[T]{}, v)
}

// ValueFromContext retrieves a validated T from context.
func ValueFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyValue[T]{}).(T)
	return v, ok
}

// Payload is the JSON body written for failed requests.
type Payload struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// ErrorPayload shapes err for JSON responses. Validation errors keep their message and map
// to 400; anything else becomes a 500 without internal detail.
func ErrorPayload(err error) Payload {
	if ve, ok := sieve.AsValidationError(err); ok {
		return Payload{
			StatusCode: ve.Status(),
			Message:    ve.Message,
			Error:      http.StatusText(ve.Status()),
		}
	}
	return Payload{
		StatusCode: http.StatusInternalServerError,
		Message:    http.StatusText(http.StatusInternalServerError),
		Error:      http.StatusText(http.StatusInternalServerError),
	}
}

// WriteError writes ErrorPayload(err) as JSON with the matching status code.
func WriteError(w http.ResponseWriter, err error) {
	p := ErrorPayload(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(p.StatusCode)
	_ = json.NewEncoder(w).Encode(p)
}

// Query validates the request query with schema and stores the value in the request context.
// Failures are answered with WriteError and next is not called.
func Query[T any](schema sieve.Schema[T], opts sieve.Options) func(http.Handler) http.Handler {
	return validate(schema, opts, sourcehttp.Query)
}

// Body validates the request body with schema and stores the value in the request context.
func Body[T any](schema sieve.Schema[T], opts sieve.Options) func(http.Handler) http.Handler {
	return validate(schema, opts, sourcehttp.Body)
}

func validate[T any](schema sieve.Schema[T], opts sieve.Options, source func(*http.Request) sieve.Source) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := sieve.Validate(r.Context(), schema, source(r), opts)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}
