// Package transform holds the pure per-record transformations shared by the
// loaders: untyped value coercion, header key normalization, and the
// record→document builders for the CSV, GeoJSON, and WKT pipelines.
package transform

import (
	"strconv"
	"strings"
)

// Coerce infers the narrowest of {nil, int64, float64, string} for a raw CSV
// cell. It is total: it never fails, falling back to the trimmed string.
//
// Precedence:
//
//  1. empty or all-whitespace → nil
//  2. all ASCII digits without a leading zero → int64
//     (a leading zero marks an identifier such as "007" and blocks numeric
//     coercion entirely; the value stays a string)
//  3. float parse after stripping thousands commas ("3,500.25" → 3500.25)
//  4. the trimmed string itself
func Coerce(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if isDigits(v) {
		if len(v) > 1 && v[0] == '0' {
			return v
		}
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
		// Wider than int64: fall through to the float path.
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
		return f
	}
	return v
}

// wktNullTokens are the additional null spellings honored by the WKT loader
// for non-geometry columns. The plain CSV loader deliberately does not use
// them; the two tools have always diverged here.
var wktNullTokens = map[string]struct{}{
	"NULL": {},
	"N/A":  {},
	"NA":   {},
	"NONE": {},
}

// CoerceWKTColumn coerces a non-geometry cell from the WKT loader's CSV.
// It behaves exactly like Coerce but additionally maps the tokens NULL, N/A,
// NA, and NONE (case-insensitive) to nil.
func CoerceWKTColumn(v string) any {
	if _, ok := wktNullTokens[strings.ToUpper(strings.TrimSpace(v))]; ok {
		return nil
	}
	return Coerce(v)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
