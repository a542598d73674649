// Command ftsdemo drives the query engine core end to end: it builds an
// in-memory index from a YAML document corpus and runs a JSON search
// request against it, the way an embedding application would wire the
// dictionary, query compiler, ranker frame and query cache together.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ftsdemo:", err)
		os.Exit(1)
	}
}
