package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	maxFiles   int
	forceLearn bool
)

var rootCmd = &cobra.Command{
	Use:   "anamnesis",
	Short: "Semantic code-intelligence engine",
	Long: `anamnesis ingests a codebase, extracts symbols/patterns/dependencies
and persists them to a local database, then answers semantic and
pattern-based queries over what it learned.

Run "anamnesis server" to expose the same operations over the
line-delimited JSON-RPC tool-server transport.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	learnCmd.Flags().BoolVar(&forceLearn, "force", false, "re-learn even if the project already has stored intelligence")
	analyzeCmd.Flags().IntVar(&maxFiles, "max-files", 0, "cap the number of files analyzed (0 = use project config)")
	checkCmd.Flags().Bool("validate", false, "include migration-status validation")
	checkCmd.Flags().Bool("performance", false, "run a parse throughput benchmark")
	setupCmd.Flags().Bool("interactive", false, "prompt for configuration instead of writing defaults")

	rootCmd.AddCommand(initCmd, learnCmd, analyzeCmd, watchCmd, checkCmd, setupCmd, serverCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

