package sieve

import (
	"reflect"
	"testing"
	"time"
)

func checkValue(value any, tags tagConfig) Issues {
	b := &binder{}
	b.checkRules(reflect.ValueOf(value), PathOf("field"), tags)
	return b.issues
}

func TestCheckRules_IntMinMax(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		tags     tagConfig
		wantCode string
		wantMsg  string
	}{
		{
			name:  "int within range",
			value: 5000,
			tags:  tagConfig{min: "1024", max: "65535"},
		},
		{
			name:     "int below minimum",
			value:    500,
			tags:     tagConfig{min: "1024"},
			wantCode: CodeTooSmall,
			wantMsg:  "Number must be greater than or equal to 1024",
		},
		{
			name:     "int above maximum",
			value:    70000,
			tags:     tagConfig{max: "65535"},
			wantCode: CodeTooBig,
			wantMsg:  "Number must be less than or equal to 65535",
		},
		{
			name:  "int at minimum boundary",
			value: 1024,
			tags:  tagConfig{min: "1024"},
		},
		{
			name:  "int at maximum boundary",
			value: 65535,
			tags:  tagConfig{max: "65535"},
		},
		{
			name:  "unparseable bound is ignored",
			value: 1,
			tags:  tagConfig{min: "ten"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkValue(tt.value, tt.tags)
			assertSingleIssue(t, issues, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestCheckRules_FloatMinMax(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		tags     tagConfig
		wantCode string
		wantMsg  string
	}{
		{
			name:  "float within range",
			value: 0.5,
			tags:  tagConfig{min: "0", max: "1"},
		},
		{
			name:     "float below minimum",
			value:    -0.1,
			tags:     tagConfig{min: "0"},
			wantCode: CodeTooSmall,
			wantMsg:  "Number must be greater than or equal to 0",
		},
		{
			name:     "float above fractional maximum",
			value:    1.51,
			tags:     tagConfig{max: "1.5"},
			wantCode: CodeTooBig,
			wantMsg:  "Number must be less than or equal to 1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkValue(tt.value, tt.tags)
			assertSingleIssue(t, issues, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestCheckRules_StringMinMax(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		tags     tagConfig
		wantCode string
		wantMsg  string
	}{
		{
			name:  "string within range",
			value: "hello",
			tags:  tagConfig{min: "3", max: "10"},
		},
		{
			name:     "string too short",
			value:    "hi",
			tags:     tagConfig{min: "3"},
			wantCode: CodeTooSmall,
			wantMsg:  "String must contain at least 3 character(s)",
		},
		{
			name:     "string too long",
			value:    "hello world",
			tags:     tagConfig{max: "5"},
			wantCode: CodeTooBig,
			wantMsg:  "String must contain at most 5 character(s)",
		},
		{
			name:  "length counts runes",
			value: "héllo",
			tags:  tagConfig{max: "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkValue(tt.value, tt.tags)
			assertSingleIssue(t, issues, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestCheckRules_SliceAndDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		tags     tagConfig
		wantCode string
		wantMsg  string
	}{
		{
			name:     "too few elements",
			value:    []string{},
			tags:     tagConfig{min: "1"},
			wantCode: CodeTooSmall,
			wantMsg:  "Array must contain at least 1 element(s)",
		},
		{
			name:     "too many elements",
			value:    []int{1, 2, 3},
			tags:     tagConfig{max: "2"},
			wantCode: CodeTooBig,
			wantMsg:  "Array must contain at most 2 element(s)",
		},
		{
			name:     "duration below minimum",
			value:    500 * time.Millisecond,
			tags:     tagConfig{min: "1s"},
			wantCode: CodeTooSmall,
			wantMsg:  "Duration must be at least 1s",
		},
		{
			name:     "duration above maximum",
			value:    2 * time.Hour,
			tags:     tagConfig{max: "90m"},
			wantCode: CodeTooBig,
			wantMsg:  "Duration must be at most 1h30m0s",
		},
		{
			name:  "nil pointer is skipped",
			value: (*int)(nil),
			tags:  tagConfig{min: "1"},
		},
		{
			name:     "pointer is dereferenced",
			value:    func() *int { v := 0; return &v }(),
			tags:     tagConfig{min: "1"},
			wantCode: CodeTooSmall,
			wantMsg:  "Number must be greater than or equal to 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkValue(tt.value, tt.tags)
			assertSingleIssue(t, issues, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestCheckRules_Oneof(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		options []string
		wantMsg string
	}{
		{
			name:    "string in list",
			value:   "prod",
			options: []string{"dev", "staging", "prod"},
		},
		{
			name:    "string not in list",
			value:   "test",
			options: []string{"dev", "staging", "prod"},
			wantMsg: "Invalid enum value. Expected 'dev' | 'staging' | 'prod', received 'test'",
		},
		{
			name:    "number in list",
			value:   8080,
			options: []string{"80", "8080"},
		},
		{
			name:    "bool not in list",
			value:   false,
			options: []string{"true"},
			wantMsg: "Invalid enum value. Expected 'true', received 'false'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkValue(tt.value, tagConfig{oneof: tt.options})
			code := ""
			if tt.wantMsg != "" {
				code = CodeInvalidEnum
			}
			assertSingleIssue(t, issues, code, tt.wantMsg)
		})
	}
}

func TestCheckRules_EachRuleIsReported(t *testing.T) {
	issues := checkValue("toolong", tagConfig{min: "10", max: "3", oneof: []string{"a"}})

	want := []string{CodeTooSmall, CodeTooBig, CodeInvalidEnum}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %d: %v", len(want), len(issues), issues)
	}
	for i, code := range want {
		if issues[i].Code != code {
			t.Errorf("issue %d: expected code %q, got %q", i, code, issues[i].Code)
		}
		if got := issues[i].Path.Join(); got != "field" {
			t.Errorf("issue %d: expected path %q, got %q", i, "field", got)
		}
	}
}

func assertSingleIssue(t *testing.T, issues Issues, wantCode, wantMsg string) {
	t.Helper()

	if wantCode == "" {
		if len(issues) > 0 {
			t.Errorf("expected no issues, got: %v", issues)
		}
		return
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Code != wantCode {
		t.Errorf("expected code %q, got %q", wantCode, issues[0].Code)
	}
	if issues[0].Message != wantMsg {
		t.Errorf("expected message %q, got %q", wantMsg, issues[0].Message)
	}
}
