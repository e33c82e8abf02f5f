// Package props reads loosely typed attributes from analyzed entity properties.
// Extraction output is not schema-checked, so numbers may arrive as JSON
// numbers or strings and any key may be missing or null.
package props

import (
	"strings"

	"github.com/spf13/cast"
)

// Has reports whether key holds a non-nil, non-blank value
func Has(properties map[string]interface{}, key string) bool {
	v, ok := properties[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the trimmed string value of key, or def
func String(properties map[string]interface{}, key, def string) string {
	if !Has(properties, key) {
		return def
	}
	s, err := cast.ToStringE(properties[key])
	if err != nil {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Int returns the integer value of key, or def when it is absent or not numeric.
// Fractional numbers are truncated.
func Int(properties map[string]interface{}, key string, def int) int {
	if !Has(properties, key) {
		return def
	}
	v := properties[key]
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return int(f)
	}
	return def
}
