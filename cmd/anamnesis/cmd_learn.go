package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"anamnesis/internal/services"
)

var learnCmd = &cobra.Command{
	Use:   "learn [path]",
	Short: "Ingest a codebase and persist its learned intelligence",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	result := a.learning.LearnFromCodebase(context.Background(), a.root, services.LearnOptions{
		Force: forceLearn,
		ProgressCallback: func(current, total int, message string) {
			fmt.Printf("[%d/%d] %s\n", current, total, message)
		},
	})

	if result.Error != "" {
		return fmt.Errorf("%s", result.Error)
	}

	fmt.Printf("learned %s in %dms\n", a.root, result.TimeElapsedMS)
	fmt.Printf("  concepts: %d  patterns: %d  files: %d\n", result.ConceptsLearned, result.PatternsLearned, result.FeaturesLearned)
	for _, insight := range result.Insights {
		fmt.Printf("  note: %s\n", insight)
	}
	return nil
}
