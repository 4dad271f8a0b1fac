package normalize

import (
	"testing"
)

func TestToLowerDotPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "double underscore to dot", input: "FOO__BAR", expected: "foo.bar"},
		{name: "single underscore preserved", input: "DB_MAX_CONNECTIONS", expected: "db_max_connections"},
		{name: "mixed double and single underscores", input: "SERVER__READ_TIMEOUT", expected: "server.read_timeout"},
		{name: "multiple levels", input: "APP__DATABASE__HOST", expected: "app.database.host"},
		{name: "empty string", input: "", expected: ""},
		{name: "only underscores", input: "____", expected: ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ToLowerDotPath(tt.input); result != tt.expected {
				t.Errorf("ToLowerDotPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDeriveFieldKey(t *testing.T) {
	tests := []struct {
		fieldName string
		expected  string
	}{
		{fieldName: "Name", expected: "name"},
		{fieldName: "P", expected: "p"},
		{fieldName: "FirstName", expected: "firstName"},
		{fieldName: "APIKey", expected: "aPIKey"},
		{fieldName: "Éclair", expected: "éclair"},
		{fieldName: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.fieldName, func(t *testing.T) {
			if result := DeriveFieldKey(tt.fieldName); result != tt.expected {
				t.Errorf("DeriveFieldKey(%q) = %q, want %q", tt.fieldName, result, tt.expected)
			}
		})
	}
}

func TestJoinKey(t *testing.T) {
	tests := []struct {
		parent   string
		key      string
		expected string
	}{
		{parent: "address", key: "city", expected: "address.city"},
		{parent: "", key: "city", expected: "city"},
		{parent: "address", key: "", expected: "address"},
		{parent: "a.b", key: "c", expected: "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.parent+"/"+tt.key, func(t *testing.T) {
			if result := JoinKey(tt.parent, tt.key); result != tt.expected {
				t.Errorf("JoinKey(%q, %q) = %q, want %q", tt.parent, tt.key, result, tt.expected)
			}
		})
	}
}
