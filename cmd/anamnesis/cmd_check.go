package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report backend health, exiting non-zero if anything is unhealthy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	validate, _ := cmd.Flags().GetBool("validate")
	performance, _ := cmd.Flags().GetBool("performance")

	healthy, checks, issues := a.system.HealthCheck(a.root)

	fmt.Printf("health: %s\n", healthStatusWord(healthy))
	for k, v := range checks {
		fmt.Printf("  %-10s %v\n", k, v)
	}
	for _, issue := range issues {
		fmt.Printf("  issue: %s\n", issue)
	}

	if validate {
		status, err := a.st.Status()
		if err != nil {
			return fmt.Errorf("checking migrations: %w", err)
		}
		fmt.Printf("schema: version %d, %d pending\n", status.CurrentVersion, len(status.Pending))
		if len(status.Pending) > 0 {
			healthy = false
		}
	}

	if performance {
		perf := a.system.GetPerformanceStatus(context.Background(), true)
		fmt.Printf("performance: %v\n", perf["status"])
		if bench, ok := perf["benchmark"].(map[string]any); ok {
			fmt.Printf("  benchmark: %v\n", bench)
		}
	}

	if !healthy {
		return fmt.Errorf("unhealthy")
	}
	return nil
}

func healthStatusWord(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "unhealthy"
}
