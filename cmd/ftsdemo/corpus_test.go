package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCorpusParsesTestdata(t *testing.T) {
	c, err := loadCorpus("testdata/corpus.yaml")
	require.NoError(t, err)
	require.Equal(t, "demo", c.Index)
	require.ElementsMatch(t, []string{"title", "body"}, c.Fields)
	require.Len(t, c.Documents, 3)
}

func TestLoadCorpusRejectsMissingFile(t *testing.T) {
	_, err := loadCorpus("testdata/does-not-exist.yaml")
	require.Error(t, err)
}
