package sizeunit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSizeUnits(t *testing.T) {
	cases := map[string]int64{
		"1K": 1024,
		"1M": 1048576,
		"1G": 1073741824,
		"1T": 1099511627776,
		"42": 42,
	}
	for lit, want := range cases {
		got, err := ParseSize(lit)
		require.NoError(t, err)
		require.Equal(t, want, got, lit)
	}
}

func TestParseDurationUnits(t *testing.T) {
	cases := map[string]int64{
		"1s":  1_000_000,
		"1ms": 1_000,
		"1us": 1,
		"1m":  60_000_000,
		"1h":  3600_000_000,
		"5":   5_000_000,
	}
	for lit, want := range cases {
		got, err := ParseDuration(lit)
		require.NoError(t, err)
		require.Equal(t, want, got, lit)
	}
}

func TestParseSizeRejectsUnknownSuffix(t *testing.T) {
	_, err := ParseSize("1X")
	require.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestParseDurationRejectsMissingDigits(t *testing.T) {
	_, err := ParseDuration("ms")
	require.ErrorIs(t, err, ErrInvalidLiteral)
}
