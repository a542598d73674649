package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommandPrintsWordIDs(t *testing.T) {
	cmd := newAnalyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"Running Shoes"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "word_id=")
}

func TestAnalyzeCommandDropsStopwords(t *testing.T) {
	cmd := newAnalyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"the shoes"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "dropped")
}
