package dictionary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetWordIDIsStableAndNonZero(t *testing.T) {
	d := New(DefaultConfig(), nil)
	id1 := d.GetWordID("running")
	id2 := d.GetWordID("running")
	require.Equal(t, id1, id2)
	require.NotZero(t, id1)
}

func TestGetWordIDStemsToSameRoot(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.Equal(t, d.GetWordID("running"), d.GetWordID("runs"))
}

func TestGetWordIDNonStemmedKeepsFormsDistinct(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.NotEqual(t, d.GetWordIDNonStemmed("running"), d.GetWordIDNonStemmed("runs"))
}

func TestStopwordsReturnZero(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.Zero(t, d.GetWordID("the"))
	require.Zero(t, d.GetWordIDNonStemmed("and"))
}

func TestIsStopWord(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.True(t, d.IsStopWord("The"))
	require.False(t, d.IsStopWord("search"))
}

func TestShortTokensAreDropped(t *testing.T) {
	d := New(Config{MinTokenLength: 3, EnableStemming: false, EnableStopwords: false}, nil)
	require.Zero(t, d.GetWordID("ab"))
	require.NotZero(t, d.GetWordID("abc"))
}

func TestWordformsSubstituteBeforeLookup(t *testing.T) {
	d := New(DefaultConfig(), map[string]string{"colour": "color"})
	require.Equal(t, d.GetWordID("colour"), d.GetWordID("color"))
}

func TestGetWordIDWithMarkersFoldsFlagsIntoHighBits(t *testing.T) {
	d := New(DefaultConfig(), nil)
	base := d.GetWordID("search") & idMask
	withStart := d.GetWordIDWithMarkers("search", true, false)
	withBoth := d.GetWordIDWithMarkers("search", true, true)

	require.Equal(t, base, withStart&idMask)
	require.NotZero(t, withStart&markerStart)
	require.Zero(t, withStart&markerEnd)
	require.NotZero(t, withBoth&markerStart)
	require.NotZero(t, withBoth&markerEnd)
}

func TestApplyStemmers(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.Equal(t, d.ApplyStemmers("running"), d.ApplyStemmers("runs"))
}

func TestTokenizeSplitsOnNonAlphanumeric(t *testing.T) {
	d := New(DefaultConfig(), nil)
	require.Equal(t, []string{"hello", "world", "42"}, d.Tokenize("hello, world! 42"))
}

func TestSettingsHashChangesWithConfig(t *testing.T) {
	d1 := New(DefaultConfig(), nil)
	d2 := New(Config{MinTokenLength: 3, EnableStemming: true, EnableStopwords: true}, nil)
	require.NotEqual(t, d1.SettingsHash(), d2.SettingsHash())
}

func TestSettingsHashChangesWithWordforms(t *testing.T) {
	d1 := New(DefaultConfig(), nil)
	d2 := New(DefaultConfig(), map[string]string{"colour": "color"})
	require.NotEqual(t, d1.SettingsHash(), d2.SettingsHash())
}

func TestSettingsHashStableAcrossMapIterationOrder(t *testing.T) {
	wf := map[string]string{"colour": "color", "favour": "favor", "grey": "gray"}
	d1 := New(DefaultConfig(), wf)
	d2 := New(DefaultConfig(), wf)
	require.Equal(t, d1.SettingsHash(), d2.SettingsHash())
}
