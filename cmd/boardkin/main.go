package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardkin",
	Short: "Extract familial relations between board members from annual-report PDFs",
	Long: `boardkin finds the board-member table of each PDF, reconstructs it across
pages, and mines the document text for familial relations between members.

Extraction parameters (table headers, board positions, relation keywords) are
read from a YAML file. Person recognition uses a remote NER service, or a
dictionary of the document's own board-member names when offline.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
