package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Parse a codebase and report symbols, complexity and dependencies without persisting anything",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.codebase.AnalyzeCodebase(context.Background(), a.root, maxFiles, true, true, true)
	if err != nil {
		return err
	}

	fmt.Printf("analyzed %s\n", result.Path)
	fmt.Printf("  files analyzed: %d  failed: %d\n", result.FilesAnalyzed, result.FilesFailed)
	for lang, count := range result.Languages {
		fmt.Printf("  %-12s %d files\n", lang, count)
	}
	if result.Complexity != nil {
		fmt.Printf("  maintainability band: %s (avg cyclomatic %.1f)\n", result.Complexity.MaintainabilityBand, result.Complexity.AvgCyclomatic)
	}
	if result.DependencyGraph != nil && len(result.DependencyGraph.Cycles) > 0 {
		fmt.Printf("  circular dependency groups: %d\n", len(result.DependencyGraph.Cycles))
	}
	return nil
}
