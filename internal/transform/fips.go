// Package transform normalizes the cross-table join keys (FIPS and
// commuting-zone codes) to one canonical zero-padded string form.
// Normalization happens at load time, never at join time.
package transform

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CountyFIPSLen is the width of a combined state+county FIPS code.
	CountyFIPSLen = 5
	// TractFIPSLen is the width of a combined state+county+tract FIPS code.
	TractFIPSLen = 11
	// CZIDLen is the width of a zero-padded 1990 commuting-zone id.
	CZIDLen = 5
)

// NormalizeCountyFIPS normalizes a state+county FIPS code to 5 digits.
func NormalizeCountyFIPS(code string) string {
	return zeroPad(cleanNumeric(code), CountyFIPSLen)
}

// NormalizeTractFIPS normalizes a state+county+tract FIPS code to 11 digits.
func NormalizeTractFIPS(code string) string {
	return zeroPad(cleanNumeric(code), TractFIPSLen)
}

// NormalizeCZID normalizes a commuting-zone id to 5 digits.
func NormalizeCZID(code string) string {
	return zeroPad(cleanNumeric(code), CZIDLen)
}

// ParseCZID parses a commuting-zone id as an integer. Spreadsheet exports
// render integer cells as floats ("123.0"), so integral floats are accepted.
func ParseCZID(s string) (int, error) {
	s = cleanNumeric(s)
	if s == "" {
		return 0, fmt.Errorf("empty commuting-zone id")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric commuting-zone id %q", s)
	}
	return n, nil
}

// FormatFIPS formats a numeric FIPS code with proper zero-padding.
func FormatFIPS(code int, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}

// cleanNumeric trims whitespace and drops a trailing ".0" float artifact
// left by spreadsheet numeric cells.
func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if strings.Trim(frac, "0") == "" {
			s = s[:i]
		}
	}
	return s
}

// zeroPad left-pads s with zeros to width. Codes already at or beyond the
// width pass through unchanged, so normalization is idempotent.
func zeroPad(s string, width int) string {
	if s == "" {
		return ""
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}
