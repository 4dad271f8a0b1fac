package normalize

import (
	"strings"
	"unicode"
)

// ToLowerDotPath normalizes an environment-style key to a lowercase dot-separated path.
// Double underscores (__) are treated as level separators and converted to dots.
// Single underscores within a level are preserved.
// Examples:
//   - "FOO__BAR" → "foo.bar"
//   - "DB_MAX_CONNECTIONS" → "db_max_connections"
//   - "SERVER__READ_TIMEOUT" → "server.read_timeout"
func ToLowerDotPath(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

// DeriveFieldKey derives the input key for a struct field name by lowercasing its first letter.
// Examples:
//   - "Name" → "name"
//   - "FirstName" → "firstName"
//   - "ID" → "iD"
func DeriveFieldKey(fieldName string) string {
	if fieldName == "" {
		return ""
	}

	runes := []rune(fieldName)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// JoinKey combines a parent key and a child key into a dotted path.
// Examples:
//   - JoinKey("address", "city") → "address.city"
//   - JoinKey("", "city") → "city"
func JoinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	if key == "" {
		return parent
	}
	return parent + "." + key
}
