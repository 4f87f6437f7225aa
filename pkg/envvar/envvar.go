// Package envvar applies environment variable overrides to configuration fields.
// Every helper is a no-op when the variable name is empty, the variable is unset,
// or its value cannot be parsed into the destination type.
package envvar

import (
	"os"
	"strconv"
	"strings"
)

// String sets dst to the value of the named variable.
func String(name string, dst *string) {
	if v := lookup(name); v != "" {
		*dst = v
	}
}

// Int sets dst to the integer value of the named variable.
func Int(name string, dst *int) {
	if v := lookup(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Bool sets dst to the boolean value of the named variable.
func Bool(name string, dst *bool) {
	if v := lookup(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List sets dst to the comma-separated values of the named variable,
// trimming whitespace and dropping empty entries.
func List(name string, dst *[]string) {
	v := lookup(name)
	if v == "" {
		return
	}

	parts := strings.Split(v, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	*dst = values
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
