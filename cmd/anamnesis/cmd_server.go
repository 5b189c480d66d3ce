package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"anamnesis/internal/mcp"
)

var serverCmd = &cobra.Command{
	Use:   "server [path]",
	Short: "Start the line-delimited JSON-RPC tool-server transport over stdio",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	os.Setenv("MCP_SERVER", "true")

	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.intelSvc.LoadFromBackend(context.Background()); err != nil {
		return err
	}

	registry := mcp.NewRegistry()
	mcp.RegisterAll(registry, mcp.Services{
		Learning:     a.learning,
		Intelligence: a.intelSvc,
		Sessions:     a.sessions,
		Codebase:     a.codebase,
		System:       a.system,
	})

	srv := mcp.NewServer(registry, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Serve(ctx, os.Stdin)
}
