package sieve

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

// checkRules applies min, max and oneof to a successfully bound value.
// Each failing rule is reported as its own issue at p, in that order.
func (b *binder) checkRules(v reflect.Value, p Path, tags tagConfig) {
	if tags.min == "" && tags.max == "" && len(tags.oneof) == 0 {
		return
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	switch {
	case v.Type() == durationType:
		b.checkDuration(time.Duration(v.Int()), p, tags)
	case v.Kind() == reflect.String:
		b.checkLength(utf8.RuneCountInString(v.String()), "String", "character(s)", p, tags)
	case v.Kind() == reflect.Slice:
		b.checkLength(v.Len(), "Array", "element(s)", p, tags)
	case isNumberKind(v.Kind()):
		b.checkNumber(numberOf(v), p, tags)
	}

	if len(tags.oneof) > 0 {
		b.checkOneof(v, p, tags.oneof)
	}
}

func (b *binder) checkLength(n int, subject, unit string, p Path, tags tagConfig) {
	if tags.min != "" {
		if minLen, err := strconv.Atoi(tags.min); err == nil && n < minLen {
			b.addIssue(p, CodeTooSmall,
				fmt.Sprintf("%s must contain at least %d %s", subject, minLen, unit),
				map[string]any{"minimum": minLen, "type": strings.ToLower(subject)})
		}
	}
	if tags.max != "" {
		if maxLen, err := strconv.Atoi(tags.max); err == nil && n > maxLen {
			b.addIssue(p, CodeTooBig,
				fmt.Sprintf("%s must contain at most %d %s", subject, maxLen, unit),
				map[string]any{"maximum": maxLen, "type": strings.ToLower(subject)})
		}
	}
}

func (b *binder) checkNumber(value float64, p Path, tags tagConfig) {
	if tags.min != "" {
		if minVal, err := strconv.ParseFloat(tags.min, 64); err == nil && value < minVal {
			b.addIssue(p, CodeTooSmall,
				fmt.Sprintf("Number must be greater than or equal to %s", tags.min),
				map[string]any{"minimum": minVal, "type": "number"})
		}
	}
	if tags.max != "" {
		if maxVal, err := strconv.ParseFloat(tags.max, 64); err == nil && value > maxVal {
			b.addIssue(p, CodeTooBig,
				fmt.Sprintf("Number must be less than or equal to %s", tags.max),
				map[string]any{"maximum": maxVal, "type": "number"})
		}
	}
}

func (b *binder) checkDuration(d time.Duration, p Path, tags tagConfig) {
	if tags.min != "" {
		if minVal, err := time.ParseDuration(tags.min); err == nil && d < minVal {
			b.addIssue(p, CodeTooSmall,
				fmt.Sprintf("Duration must be at least %s", minVal),
				map[string]any{"minimum": minVal, "type": "duration"})
		}
	}
	if tags.max != "" {
		if maxVal, err := time.ParseDuration(tags.max); err == nil && d > maxVal {
			b.addIssue(p, CodeTooBig,
				fmt.Sprintf("Duration must be at most %s", maxVal),
				map[string]any{"maximum": maxVal, "type": "duration"})
		}
	}
}

func (b *binder) checkOneof(v reflect.Value, p Path, options []string) {
	var received string
	switch {
	case v.Kind() == reflect.String:
		received = v.String()
	case v.Kind() == reflect.Bool:
		received = strconv.FormatBool(v.Bool())
	case isNumberKind(v.Kind()):
		received = strconv.FormatFloat(numberOf(v), 'f', -1, 64)
	default:
		return
	}

	if lo.Contains(options, received) {
		return
	}

	quoted := lo.Map(options, func(o string, _ int) string { return "'" + o + "'" })
	b.addIssue(p, CodeInvalidEnum,
		fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", strings.Join(quoted, " | "), received),
		map[string]any{"options": options, "received": received})
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func numberOf(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
