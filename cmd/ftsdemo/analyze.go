package main

import (
	"fmt"

	"github.com/manticore-go/ftscore/dictionary"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var stem, stop bool
	var minLen int

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Tokenizes and canonicalizes text the way a corpus load would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict := dictionary.New(dictionary.Config{
				MinTokenLength:  minLen,
				EnableStemming:  stem,
				EnableStopwords: stop,
			}, nil)
			out := cmd.OutOrStdout()
			for _, tok := range dict.Tokenize(args[0]) {
				term, kept := dict.CanonicalTerm(tok)
				if !kept {
					fmt.Fprintf(out, "%-15s dropped\n", tok)
					continue
				}
				fmt.Fprintf(out, "%-15s -> %-15s word_id=%d\n", tok, term, dict.GetWordID(tok))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stem, "stem", true, "apply the snowball stemmer")
	cmd.Flags().BoolVar(&stop, "stopwords", true, "drop English stopwords")
	cmd.Flags().IntVar(&minLen, "min-len", 2, "minimum token length kept")
	return cmd
}
