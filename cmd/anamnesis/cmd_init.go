package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anamnesis/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create .anamnesis/config.json with default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	if err := config.Save(a.root, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	status, err := a.st.Status()
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}

	fmt.Printf("initialized %s\n", a.root)
	fmt.Printf("  config:  .anamnesis/config.json\n")
	fmt.Printf("  schema:  version %d (%d applied, %d pending)\n", status.CurrentVersion, len(status.Applied), len(status.Pending))
	return nil
}
