// Package formatting converts byte sizes to and from human-readable strings.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

const unit = 1024

// units are the base-1024 suffixes in ascending order. The index of a
// suffix is its power of 1024.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes converts a byte count to a human-readable string using base-1024 units.
// Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n)
	exp := 0
	for size >= unit && exp < len(units)-1 {
		size /= unit
		exp++
	}

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[exp]
}

// ParseBytes parses a size such as "10MB", "1.5 GB", or "512" into bytes.
// Units are base-1024 and case-insensitive; IEC spellings ("MiB") are
// accepted as aliases. A bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	suffix := strings.ToUpper(strings.TrimSpace(s[end:]))
	if suffix == "" {
		return int64(value), nil
	}

	exp, ok := unitPower(suffix)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", suffix)
	}

	multiplier := int64(1)
	for range exp {
		multiplier *= unit
	}
	return int64(value * float64(multiplier)), nil
}

func unitPower(suffix string) (int, bool) {
	if len(suffix) == 3 && suffix[1] == 'I' {
		suffix = suffix[:1] + "B"
	}
	for i, u := range units {
		if u == suffix {
			return i, true
		}
	}
	return 0, false
}
