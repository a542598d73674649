package wildcard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPercentWildcard(t *testing.T) {
	require.True(t, Match("hello", "h%llo"))
}

func TestMatchEscapedPercentIsLiteral(t *testing.T) {
	require.False(t, Match("hello", `h\%llo`))
}

func TestMatchStarWildcard(t *testing.T) {
	require.True(t, Match("hello", "he*o"))
}

func TestMatchLiteralEqualsSelf(t *testing.T) {
	for _, s := range []string{"", "abc", "hello world", "unicode-é中"} {
		require.True(t, Match(s, s))
	}
}

func TestMatchBareStarMatchesAnything(t *testing.T) {
	for _, s := range []string{"", "x", "a whole sentence"} {
		require.True(t, Match(s, "*"))
	}
}

func TestMatchPercentRequiresAtMostOneChar(t *testing.T) {
	require.True(t, Match("ac", "a%c"))
	require.True(t, Match("abc", "a%c"))
	require.False(t, Match("abbc", "a%c"))
}

func TestMatchNoMatchWhenLiteralDiffers(t *testing.T) {
	require.False(t, Match("hello", "world"))
}

func TestUseDPThresholdSelection(t *testing.T) {
	manyStars := strings.Repeat("*", 11)
	require.True(t, useDP(compile(manyStars)))

	fewStarsShort := "*a*b*c*"
	require.False(t, useDP(compile(fewStarsShort)))

	fewStarsLong := strings.Repeat("*abcde", 6)
	require.True(t, useDP(compile(fewStarsLong)))
}

func TestRecursiveAndDPAgree(t *testing.T) {
	cases := []struct{ s, p string }{
		{"hello", "h%llo"},
		{"hello", "he*o"},
		{"hello", `h\%llo`},
		{"abcabcabc", "*abc*"},
		{"", "*"},
		{"x", "%"},
		{"", "%"},
		{"aaaa", "a*a*a*a"},
		{"aaaa", "a*a*a*a*a"},
	}
	for _, c := range cases {
		pat := compile(c.p)
		require.Equal(t, matchRecursive([]rune(c.s), pat, 0, 0), matchDP([]rune(c.s), pat), "s=%q p=%q", c.s, c.p)
	}
}
