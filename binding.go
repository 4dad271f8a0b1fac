package sieve

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Azhovan/sieve/internal/decode"
	"github.com/Azhovan/sieve/internal/normalize"
)

// tagName is the struct tag read by Struct schemas.
const tagName = "sieve"

// tagConfig holds parsed directives from a struct field's `sieve` tag.
type tagConfig struct {
	name       string   // Custom input key (name:custom or name:nested.key)
	defValue   string   // Default value (default:value)
	min        string   // Minimum constraint (min:N)
	max        string   // Maximum constraint (max:M)
	oneof      []string // Allowed values (oneof:a,b,c)
	required   bool     // Key must be present (required or required:true)
	hasDefault bool     // Whether a default directive was present
	skip       bool     // Tag is "-"
}

// parseTag parses a `sieve` struct tag into a structured tagConfig.
// Tag format: "directive1:value1,directive2:value2,..."
// Boolean directives can omit `:true` (e.g., "required" == "required:true")
func parseTag(tag string) tagConfig {
	cfg := tagConfig{}

	if tag == "" {
		return cfg
	}
	if tag == "-" {
		cfg.skip = true
		return cfg
	}

	for _, directive := range splitDirectives(tag) {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		parts := strings.SplitN(directive, ":", 2)
		name := strings.TrimSpace(parts[0])
		var value string
		if len(parts) > 1 {
			value = parts[1] // Don't trim value - empty strings may be intentional
		}

		switch name {
		case "name":
			cfg.name = strings.TrimSpace(value)
		case "default":
			cfg.defValue = value
			cfg.hasDefault = true
		case "min":
			cfg.min = strings.TrimSpace(value)
		case "max":
			cfg.max = strings.TrimSpace(value)
		case "oneof":
			if value != "" {
				cfg.oneof = strings.Split(value, ",")
				for i := range cfg.oneof {
					cfg.oneof[i] = strings.TrimSpace(cfg.oneof[i])
				}
			}
		case "required":
			// Only an explicit "false" turns it off; anything else is treated as true.
			cfg.required = value != "false"
		}
	}

	return cfg
}

// splitDirectives splits a tag string into individual directives.
// A comma inside oneof values belongs to the oneof list unless a known directive follows it.
func splitDirectives(tag string) []string {
	var directives []string
	var current strings.Builder
	inOneof := false

	for i := 0; i < len(tag); i++ {
		if !inOneof && strings.HasPrefix(tag[i:], "oneof:") {
			inOneof = true
			current.WriteString("oneof:")
			i += len("oneof:") - 1
			continue
		}

		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			continue
		}

		if inOneof && !startsWithDirective(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		inOneof = false
		directives = append(directives, current.String())
		current.Reset()
	}

	if current.Len() > 0 {
		directives = append(directives, current.String())
	}

	return directives
}

// startsWithDirective checks if a string starts with a known directive name.
func startsWithDirective(s string) bool {
	s = strings.TrimSpace(s)
	for _, d := range []string{"name:", "default:", "min:", "max:", "oneof:", "required"} {
		if strings.HasPrefix(s, d) {
			return true
		}
	}
	return false
}

// fieldKey returns the declared input key of a struct field.
func fieldKey(field reflect.StructField, tags tagConfig) string {
	if tags.name != "" {
		return tags.name
	}
	return normalize.DeriveFieldKey(field.Name)
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// timeLayouts are tried in order when binding time.Time from a string.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isOptionalType reports whether t is an instantiation of Optional[T].
func isOptionalType(t reflect.Type) bool {
	if t.Kind() != reflect.Struct || t.NumField() != 2 {
		return false
	}
	return t.PkgPath() == reflect.TypeOf(Optional[int]{}).PkgPath() &&
		strings.HasPrefix(t.Name(), "Optional[") &&
		t.Field(1).Name == "Set" && t.Field(1).Type.Kind() == reflect.Bool
}

// isObjectType reports whether t binds from a nested object.
func isObjectType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && !isOptionalType(t)
}

// binder walks a struct and fills it from expanded input, collecting issues in field order.
type binder struct {
	coerce bool
	strict bool
	issues Issues
	err    error // programming errors (unsupported field types)
}

func (b *binder) addIssue(p Path, code, msg string, params map[string]any) {
	b.issues = append(b.issues, Issue{Path: p, Code: code, Message: msg, Params: params})
}

// declaredKeys records the keys a struct claims in one input object. A dotted key claims
// each segment, and the objects it passes through are checked for unknown keys as well.
type declaredKeys struct {
	name     string                   // segment as declared, used in issue paths
	owned    bool                     // the whole value belongs to a field
	children map[string]*declaredKeys // keyed by lowercase segment
}

func (d *declaredKeys) add(segs []string) {
	cur := d
	for _, seg := range segs {
		lower := strings.ToLower(seg)
		next, ok := cur.children[lower]
		if !ok {
			next = &declaredKeys{name: seg, children: make(map[string]*declaredKeys)}
			cur.children[lower] = next
		}
		cur = next
	}
	cur.owned = true
}

// bindStruct fills v (a struct value) from obj. path is the location of obj in the input.
func (b *binder) bindStruct(v reflect.Value, obj map[string]any, path Path) {
	t := v.Type()
	declared := &declaredKeys{children: make(map[string]*declaredKeys, t.NumField())}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tags := parseTag(field.Tag.Get(tagName))
		if tags.skip {
			continue
		}

		key := fieldKey(field, tags)
		segs := strings.Split(key, ".")
		declared.add(segs)

		fieldPath := path
		for _, seg := range segs {
			fieldPath = fieldPath.Append(Key(seg))
		}

		raw, present := lookup(obj, segs)
		b.bindField(v.Field(i), raw, present, fieldPath, tags)
	}

	if b.strict {
		b.checkUnknownKeys(obj, declared, path)
	}
}

// checkUnknownKeys reports keys of obj that no field declared, then descends into the
// objects that dotted keys pass through. Objects owned by a field are checked when bound.
func (b *binder) checkUnknownKeys(obj map[string]any, declared *declaredKeys, path Path) {
	var unknown []string
	for key := range obj {
		if _, ok := declared.children[strings.ToLower(key)]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool {
			li, lj := strings.ToLower(unknown[i]), strings.ToLower(unknown[j])
			if li != lj {
				return li < lj
			}
			return unknown[i] < unknown[j]
		})

		quoted := lo.Map(unknown, func(k string, _ int) string { return "'" + k + "'" })
		b.addIssue(path, CodeUnrecognizedKeys,
			"Unrecognized key(s) in object: "+strings.Join(quoted, ", "),
			map[string]any{"keys": unknown})
	}

	children := lo.Values(declared.children)
	sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })
	for _, child := range children {
		if child.owned || len(child.children) == 0 {
			continue
		}
		_, raw, ok := decode.LookupKey(obj, child.name)
		if !ok {
			continue
		}
		if nested, isObj := raw.(map[string]any); isObj {
			b.checkUnknownKeys(nested, child, path.Append(Key(child.name)))
		}
	}
}

// bindField binds one struct field, applying defaults, presence rules and tag rules.
func (b *binder) bindField(fv reflect.Value, raw any, present bool, p Path, tags tagConfig) {
	ft := fv.Type()

	if !present {
		switch {
		case tags.hasDefault:
			b.bindDefault(fv, tags.defValue, p, tags)
			return
		case tags.required:
			b.addIssue(p, CodeRequired, "Required", nil)
			return
		case isObjectType(ft):
			// Absent optional objects still get their own defaults and required checks.
			b.bindStruct(fv, map[string]any{}, p)
			return
		default:
			return
		}
	}

	if raw == nil {
		if ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Interface {
			return
		}
		b.addIssue(p, CodeInvalidType,
			fmt.Sprintf("Expected %s, received null", expectedName(ft)),
			map[string]any{"expected": expectedName(ft), "received": "null"})
		return
	}

	if isOptionalType(ft) {
		inner := fv.Field(0)
		if b.bindValue(inner, raw, p, b.coerce) {
			fv.Field(1).SetBool(true)
			b.checkRules(inner, p, tags)
		}
		return
	}

	if b.bindValue(fv, raw, p, b.coerce) {
		b.checkRules(fv, p, tags)
	}
}

// bindDefault binds a default value. Defaults are strings, so coercion always applies.
func (b *binder) bindDefault(fv reflect.Value, raw string, p Path, tags tagConfig) {
	optional := isOptionalType(fv.Type())
	target := fv
	if optional {
		target = fv.Field(0)
	}
	if !b.bindValue(target, raw, p, true) {
		return
	}
	if optional {
		fv.Field(1).SetBool(true)
	}
	b.checkRules(target, p, tags)
}

// bindValue converts raw into dst. It records an issue and returns false when raw does not fit.
func (b *binder) bindValue(dst reflect.Value, raw any, p Path, coerce bool) bool {
	t := dst.Type()

	switch {
	case t == durationType:
		return b.bindDuration(dst, raw, p)
	case t == timeType:
		return b.bindTime(dst, raw, p)
	case isOptionalType(t):
		if b.bindValue(dst.Field(0), raw, p, coerce) {
			dst.Field(1).SetBool(true)
			return true
		}
		return false
	}

	switch t.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return b.typeMismatch(p, "string", raw)
		}
		dst.SetString(s)
		return true

	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			dst.SetBool(v)
			return true
		case string:
			if coerce {
				if parsed, err := strconv.ParseBool(v); err == nil {
					dst.SetBool(parsed)
					return true
				}
			}
		}
		return b.typeMismatch(p, "boolean", raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := toNumber(raw, coerce)
		if !ok {
			return b.typeMismatch(p, "number", raw)
		}
		if f != math.Trunc(f) {
			b.addIssue(p, CodeInvalidType, "Expected integer, received float",
				map[string]any{"expected": "integer", "received": "float"})
			return false
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return b.outOfRange(p, f)
		}
		n := int64(f)
		if dst.OverflowInt(n) {
			return b.outOfRange(p, f)
		}
		dst.SetInt(n)
		return true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := toNumber(raw, coerce)
		if !ok {
			return b.typeMismatch(p, "number", raw)
		}
		if f != math.Trunc(f) {
			b.addIssue(p, CodeInvalidType, "Expected integer, received float",
				map[string]any{"expected": "integer", "received": "float"})
			return false
		}
		if f < 0 {
			b.addIssue(p, CodeTooSmall, "Number must be greater than or equal to 0",
				map[string]any{"minimum": 0})
			return false
		}
		if f >= math.MaxUint64 {
			return b.outOfRange(p, f)
		}
		n := uint64(f)
		if dst.OverflowUint(n) {
			return b.outOfRange(p, f)
		}
		dst.SetUint(n)
		return true

	case reflect.Float32, reflect.Float64:
		f, ok := toNumber(raw, coerce)
		if !ok {
			return b.typeMismatch(p, "number", raw)
		}
		if dst.OverflowFloat(f) {
			return b.outOfRange(p, f)
		}
		dst.SetFloat(f)
		return true

	case reflect.Slice:
		return b.bindSlice(dst, raw, p, coerce)

	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return b.typeMismatch(p, "object", raw)
		}
		before := len(b.issues)
		b.bindStruct(dst, obj, p)
		return len(b.issues) == before

	case reflect.Ptr:
		elem := reflect.New(t.Elem())
		if !b.bindValue(elem.Elem(), raw, p, coerce) {
			return false
		}
		dst.Set(elem)
		return true

	case reflect.Interface:
		if !reflect.TypeOf(raw).AssignableTo(t) {
			return b.typeMismatch(p, "value", raw)
		}
		dst.Set(reflect.ValueOf(raw))
		return true

	case reflect.Map:
		obj, ok := raw.(map[string]any)
		if !ok {
			return b.typeMismatch(p, "object", raw)
		}
		return b.bindMap(dst, obj, p, coerce)
	}

	if b.err == nil {
		b.err = fmt.Errorf("sieve: unsupported field type %s at %q", t, p.Join())
	}
	return false
}

func (b *binder) bindSlice(dst reflect.Value, raw any, p Path, coerce bool) bool {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = lo.Map(v, func(s string, _ int) any { return s })
	case string:
		// A single query parameter is a one-element list.
		if !coerce {
			return b.typeMismatch(p, "array", raw)
		}
		items = []any{v}
	default:
		return b.typeMismatch(p, "array", raw)
	}

	out := reflect.MakeSlice(dst.Type(), len(items), len(items))
	ok := true
	for i, item := range items {
		elemPath := p.Append(Index(i))
		if item == nil {
			b.addIssue(elemPath, CodeInvalidType,
				fmt.Sprintf("Expected %s, received null", expectedName(dst.Type().Elem())), nil)
			ok = false
			continue
		}
		if !b.bindValue(out.Index(i), item, elemPath, coerce) {
			ok = false
		}
	}
	if ok {
		dst.Set(out)
	}
	return ok
}

func (b *binder) bindMap(dst reflect.Value, obj map[string]any, p Path, coerce bool) bool {
	t := dst.Type()
	if t.Key().Kind() != reflect.String {
		if b.err == nil {
			b.err = fmt.Errorf("sieve: unsupported map key type %s at %q", t.Key(), p.Join())
		}
		return false
	}

	out := reflect.MakeMapWithSize(t, len(obj))
	ok := true
	keys := lo.Keys(obj)
	sort.Strings(keys)
	for _, k := range keys {
		elem := reflect.New(t.Elem()).Elem()
		if !b.bindValue(elem, obj[k], p.Append(Key(k)), coerce) {
			ok = false
			continue
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
	}
	if ok {
		dst.Set(out)
	}
	return ok
}

func (b *binder) bindDuration(dst reflect.Value, raw any, p Path) bool {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			b.addIssue(p, CodeInvalidString, "Invalid duration", map[string]any{"validation": "duration"})
			return false
		}
		dst.SetInt(int64(d))
		return true
	default:
		f, ok := toNumber(raw, false)
		if !ok {
			return b.typeMismatch(p, "string", raw)
		}
		dst.SetInt(int64(f))
		return true
	}
}

func (b *binder) bindTime(dst reflect.Value, raw any, p Path) bool {
	switch v := raw.(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(v))
		return true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				dst.Set(reflect.ValueOf(parsed))
				return true
			}
		}
		b.addIssue(p, CodeInvalidString, "Invalid datetime", map[string]any{"validation": "datetime"})
		return false
	default:
		return b.typeMismatch(p, "string", raw)
	}
}

func (b *binder) typeMismatch(p Path, expected string, raw any) bool {
	received := receivedName(raw)
	b.addIssue(p, CodeInvalidType,
		fmt.Sprintf("Expected %s, received %s", expected, received),
		map[string]any{"expected": expected, "received": received})
	return false
}

func (b *binder) outOfRange(p Path, f float64) bool {
	b.addIssue(p, CodeTooBig, fmt.Sprintf("Number %g is out of range", f), map[string]any{"received": f})
	return false
}

// lookup finds segs in obj, matching keys case-insensitively.
func lookup(obj map[string]any, segs []string) (any, bool) {
	var cur any = obj
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		_, cur, ok = decode.LookupKey(m, seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// toNumber extracts a float64 from decoded numbers; strings are parsed only when coerce is set.
func toNumber(raw any, coerce bool) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if !coerce {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// receivedName names the type of a decoded input value.
func receivedName(raw any) string {
	if raw == nil {
		return "null"
	}
	switch raw.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any, map[any]any:
		return "object"
	case []any, []string:
		return "array"
	case time.Time:
		return "date"
	}
	if _, ok := toNumber(raw, false); ok {
		return "number"
	}
	return "unknown"
}

// expectedName names the input type a Go type binds from.
func expectedName(t reflect.Type) string {
	if t == durationType || t == timeType {
		return "string"
	}
	if isOptionalType(t) {
		return expectedName(t.Field(0).Type)
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
	case reflect.Slice:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Ptr:
		return expectedName(t.Elem())
	default:
		return "value"
	}
}
