package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ftsdemo",
		Short:         "Exercises the full-text query engine core against a YAML corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSearchCmd())
	root.AddCommand(newAnalyzeCmd())
	return root
}
