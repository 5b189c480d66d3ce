package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"anamnesis/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a project configuration, optionally prompting for values",
	RunE:  runSetup,
}

// runSetup is the boundary-only interactive setup wizard (spec §6):
// anamnesis itself only defines the config it writes, not a full
// terminal-UI wizard experience.
func runSetup(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if interactive {
		promptSetup(cfg)
	}

	if err := config.Save(root, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("wrote %s/.anamnesis/config.json\n", root)
	return nil
}

func promptSetup(cfg *config.Config) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("max files to learn [%d]: ", cfg.Intelligence.MaxFiles)
	if v := readLine(reader); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Intelligence.MaxFiles = n
		}
	}

	fmt.Printf("enable file watching [%t]: ", cfg.Watching.Enabled)
	if v := readLine(reader); v != "" {
		cfg.Watching.Enabled = v == "y" || v == "yes" || v == "true"
	}

	fmt.Printf("mcp server name [%s]: ", cfg.MCP.ServerName)
	if v := readLine(reader); v != "" {
		cfg.MCP.ServerName = v
	}
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
