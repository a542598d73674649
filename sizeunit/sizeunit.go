// Package sizeunit parses the size and time literals spec.md §8
// specifies for config/request fields such as ram_limit and max_query_time.
package sizeunit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLiteral is returned for a literal with no digits or an
// unrecognised unit suffix.
var ErrInvalidLiteral = errors.New("sizeunit: invalid literal")

// ParseSize parses a byte-size literal: a bare integer (bytes), or an
// integer suffixed with K/M/G/T (binary multiples: 1K=1024, 1M=1048576,
// 1G=1024^3, 1T=1024^4).
func ParseSize(s string) (int64, error) {
	n, suffix, err := splitLiteral(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToUpper(suffix) {
	case "":
		return n, nil
	case "K":
		return n * 1024, nil
	case "M":
		return n * 1024 * 1024, nil
	case "G":
		return n * 1024 * 1024 * 1024, nil
	case "T":
		return n * 1024 * 1024 * 1024 * 1024, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
}

// ParseDuration parses a time literal into microseconds: a bare integer
// defaults to seconds; recognised suffixes are us, ms, s, m, h.
func ParseDuration(s string) (int64, error) {
	n, suffix, err := splitLiteral(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(suffix) {
	case "":
		return n * 1_000_000, nil
	case "us":
		return n, nil
	case "ms":
		return n * 1_000, nil
	case "s":
		return n * 1_000_000, nil
	case "m":
		return n * 60 * 1_000_000, nil
	case "h":
		return n * 3600 * 1_000_000, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
}

// splitLiteral separates a leading (possibly signed) integer from its
// trailing alphabetic unit suffix.
func splitLiteral(s string) (int64, string, error) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
	}
	numPart := s[:i]
	suffix := s[i:]
	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
	}
	return n, suffix, nil
}
