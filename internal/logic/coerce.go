package logic

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Coerce converts a raw input sample into a boolean signal. It never fails.
//
// A value is true if it is the boolean true, the exact string "true", or
// anything whose leading numeric prefix parses to a non-zero number.
// Everything else, including "TRUE" and "True", is false.
func Coerce(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		if v == "true" {
			return true
		}
		f, ok := parseFloatPrefix(v)
		return ok && f != 0
	case []byte:
		return Coerce(string(v))
	}
	f, ok := toFloat(raw)
	return ok && !math.IsNaN(f) && f != 0
}

// ParseInteger parses the leading integer of a raw value the way a lenient
// decimal parser would: surrounding whitespace is skipped, an optional sign and
// 0x prefix are accepted, and parsing stops at the first non-digit. Floats are
// truncated toward zero. ok is false when no digits are found.
func ParseInteger(raw any) (n int64, ok bool) {
	switch v := raw.(type) {
	case string:
		return parseIntPrefix(v)
	case []byte:
		return parseIntPrefix(string(v))
	case bool, nil:
		return 0, false
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if f <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(f), true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
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
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// parseFloatPrefix returns the value of the longest decimal number at the start
// of s (after leading whitespace). "Infinity" is the only accepted spelling of
// an infinite value; NaN is never produced.
func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i

	// Exponent only counts if at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// Out of range: ParseFloat still returns ±Inf or 0 with the right sign.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := uint64(10)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	var n uint64
	digits := 0
	for _, c := range []byte(s) {
		d, ok := digitValue(c)
		if !ok || uint64(d) >= base {
			break
		}
		digits++
		if n > (math.MaxInt64-uint64(d))/base {
			n = math.MaxInt64
			continue
		}
		n = n*base + uint64(d)
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		return -int64(n), true
	}
	return int64(n), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
