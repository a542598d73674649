package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// corpusDoc is one source record in a corpus YAML file.
type corpusDoc struct {
	ID     int64             `yaml:"id"`
	Fields map[string]string `yaml:"fields"`
}

// corpus is the demo's document source format: an index name, the field
// list that fixes hitpos field indices, an optional wordform table fed
// straight to dictionary.New, and the documents themselves.
type corpus struct {
	Index     string            `yaml:"index"`
	Fields    []string          `yaml:"fields"`
	Wordforms map[string]string `yaml:"wordforms"`
	Documents []corpusDoc       `yaml:"documents"`
}

func loadCorpus(path string) (*corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var c corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	if c.Index == "" {
		return nil, fmt.Errorf("corpus: missing index name")
	}
	if len(c.Fields) == 0 {
		return nil, fmt.Errorf("corpus: missing fields list")
	}
	return &c, nil
}
