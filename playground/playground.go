// Package playground adapts go-playground/validator struct tags to sieve.Schema.
//
// Field names in issue paths come from `json` tags, and messages are the validator's
// English translations ("name is a required field").
//
//	type CreateUser struct {
//	    Name string `json:"name" validate:"required,min=2"`
//	    Age  int    `json:"age" validate:"gte=0"`
//	}
//
//	schema, err := playground.New[CreateUser]()
//	user, err := sieve.Validate(ctx, schema, sourcehttp.Body(r), sieve.Options{})
package playground

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/goccy/go-json"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/internal/decode"
)

// ErrTranslatorNotFound indicates the English translator could not be created.
var ErrTranslatorNotFound = errors.New("sieve: translator not found")

type customValidation struct {
	tag     string
	fn      validator.Func
	message string
}

type config struct {
	translator  ut.Translator
	validations []customValidation
}

// Option configures a Schema.
type Option func(*config)

// WithTranslator uses trans for messages instead of the built-in English one.
// Default translations are not registered on a custom translator; the caller owns them.
func WithTranslator(trans ut.Translator) Option {
	return func(c *config) {
		c.translator = trans
	}
}

// WithValidation registers a custom validation tag. message may reference the field as {0}.
func WithValidation(tag string, fn validator.Func, message string) Option {
	return func(c *config) {
		c.validations = append(c.validations, customValidation{tag: tag, fn: fn, message: message})
	}
}

// Schema validates T with go-playground/validator. It is safe for concurrent use.
type Schema[T any] struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Schema for the struct type T.
func New[T any](opts ...Option) (*Schema[T], error) {
	var zero T
	if reflect.TypeOf(zero) == nil || reflect.TypeOf(zero).Kind() != reflect.Struct {
		return nil, fmt.Errorf("sieve: playground schema requires a struct type, got %T", zero)
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	trans := cfg.translator
	if trans == nil {
		enLang := en.New()
		uni := ut.New(enLang, enLang)
		var ok bool
		trans, ok = uni.GetTranslator("en")
		if !ok {
			return nil, ErrTranslatorNotFound
		}
		if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
			return nil, fmt.Errorf("register translations: %w", err)
		}
	}

	for _, cv := range cfg.validations {
		if err := validate.RegisterValidation(cv.tag, cv.fn); err != nil {
			return nil, fmt.Errorf("register validation %q: %w", cv.tag, err)
		}
		if err := registerMessage(validate, trans, cv.tag, cv.message); err != nil {
			return nil, fmt.Errorf("register translation %q: %w", cv.tag, err)
		}
	}

	return &Schema[T]{validate: validate, translator: trans}, nil
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, message string) error {
	return validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate implements sieve.Schema.
func (s *Schema[T]) Validate(ctx context.Context, input any) sieve.Result[T] {
	value, issue, err := s.decode(ctx, input)
	if err != nil {
		return sieve.Fail[T](err)
	}
	if issue != nil {
		return sieve.Reject[T](*issue)
	}

	if err := s.validate.StructCtx(ctx, &value); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return sieve.Fail[T](err)
		}
		return sieve.Reject[T](s.issues(verrs)...)
	}

	return sieve.Accept(value)
}

// decode turns input into T. Type mismatches are reported as an issue.
func (s *Schema[T]) decode(ctx context.Context, input any) (T, *sieve.Issue, error) {
	var out T

	var obj map[string]any
	switch in := input.(type) {
	case T:
		return in, nil, nil
	case *T:
		if in == nil {
			return out, rootTypeIssue("null"), nil
		}
		return *in, nil, nil
	case nil:
		obj = map[string]any{}
	case map[string]any:
		obj = in
	case sieve.Source:
		data, err := in.Load(ctx)
		if err != nil {
			return out, nil, fmt.Errorf("load source %s: %w", in.Name(), err)
		}
		obj = decode.Expand(data)
	default:
		return out, rootTypeIssue(receivedName(reflect.TypeOf(input))), nil
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return out, nil, fmt.Errorf("encode input: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, s.typeIssue(typeErr), nil
		}
		// The document was produced by Marshal above, so any other decode error is a
		// mismatch the decoder could not attribute to a field.
		return out, &sieve.Issue{Code: sieve.CodeInvalidType, Message: "Invalid input"}, nil
	}
	return out, nil, nil
}

func (s *Schema[T]) typeIssue(e *json.UnmarshalTypeError) *sieve.Issue {
	var zero T
	expected := receivedName(e.Type)
	received := receivedFromJSON(e.Value)
	if expected == "number" && received == "float" {
		expected = "integer"
	}

	return &sieve.Issue{
		Path:    fieldPath(reflect.TypeOf(zero), e.Struct, e.Field),
		Code:    sieve.CodeInvalidType,
		Message: fmt.Sprintf("Expected %s, received %s", expected, received),
		Params:  map[string]any{"expected": expected, "received": received},
	}
}

func (s *Schema[T]) issues(verrs validator.ValidationErrors) sieve.Issues {
	var zero T
	root := reflect.TypeOf(zero).Name()

	out := make(sieve.Issues, 0, len(verrs))
	for _, fe := range verrs {
		params := map[string]any{"tag": fe.Tag()}
		if fe.Param() != "" {
			params["param"] = fe.Param()
		}
		out = append(out, sieve.Issue{
			Path:    parseNamespace(fe.Namespace(), root),
			Code:    issueCode(fe.Tag()),
			Message: fe.Translate(s.translator),
			Params:  params,
		})
	}
	return out
}

// parseNamespace turns "CreateUser.items[1].sku" into items.1.sku.
func parseNamespace(ns, root string) sieve.Path {
	ns = strings.TrimPrefix(ns, root+".")

	var p sieve.Path
	for _, part := range strings.Split(ns, ".") {
		name, rest, _ := strings.Cut(part, "[")
		if name != "" {
			p = append(p, sieve.Key(name))
		}
		for rest != "" {
			var idx string
			idx, rest, _ = strings.Cut(rest, "]")
			rest = strings.TrimPrefix(rest, "[")
			if i, err := strconv.Atoi(idx); err == nil {
				p = append(p, sieve.Index(i))
			} else {
				p = append(p, sieve.Key(idx))
			}
		}
	}
	return p
}

func issueCode(tag string) string {
	switch tag {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return sieve.CodeRequired
	case "min", "gte", "gt":
		return sieve.CodeTooSmall
	case "max", "lte", "lt":
		return sieve.CodeTooBig
	case "oneof":
		return sieve.CodeInvalidEnum
	case "email", "url", "uri", "uuid", "uuid4", "datetime", "alpha", "alphanum", "numeric":
		return sieve.CodeInvalidString
	default:
		return sieve.CodeCustom
	}
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// fieldPath finds the json path of goField inside the struct type named structName,
// searching t depth-first. Slice indexes are not known and are omitted.
func fieldPath(t reflect.Type, structName, goField string) sieve.Path {
	if p, ok := findField(t, structName, goField, nil, map[reflect.Type]bool{}); ok {
		return p
	}
	if goField == "" {
		return nil
	}
	return sieve.PathOf(goField)
}

func findField(t reflect.Type, structName, goField string, prefix sieve.Path, seen map[reflect.Type]bool) (sieve.Path, bool) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return nil, false
	}
	seen[t] = true

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := jsonName(f)
		if key == "" {
			key = f.Name
		}
		p := prefix.Append(sieve.Key(key))

		if t.Name() == structName && f.Name == goField {
			return p, true
		}
		if found, ok := findField(f.Type, structName, goField, p, seen); ok {
			return found, true
		}
	}
	return nil, false
}

// receivedFromJSON names the JSON value described by UnmarshalTypeError.Value.
// Integer decoders report "number <first byte>", so the byte decides the real type.
func receivedFromJSON(v string) string {
	rest, ok := strings.CutPrefix(v, "number ")
	if !ok {
		if v == "bool" {
			return "boolean"
		}
		return v
	}
	switch {
	case rest == "":
		return "number"
	case rest[0] == '"':
		return "string"
	case rest[0] == 't' || rest[0] == 'f':
		return "boolean"
	case rest[0] == '[':
		return "array"
	case rest[0] == '{':
		return "object"
	case strings.ContainsAny(rest, ".eE"):
		return "float"
	default:
		return "number"
	}
}

func rootTypeIssue(received string) *sieve.Issue {
	return &sieve.Issue{
		Code:    sieve.CodeInvalidType,
		Message: "Expected object, received " + received,
		Params:  map[string]any{"expected": "object", "received": received},
	}
}

// receivedName names a Go type the way JSON input types are named in messages.
func receivedName(t reflect.Type) string {
	if t == nil {
		return "null"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}
