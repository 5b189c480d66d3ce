package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"anamnesis/internal/services"
	"anamnesis/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a codebase and re-learn changed files as they settle",
	Long:  "Blocks until interrupted (SIGINT/SIGTERM), re-running the learn pipeline on debounced file changes.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(pathArg(args))
	if err != nil {
		return err
	}
	defer a.close()

	w, err := watch.NewFSWatcher(a.root, a.cfg.Intelligence.IgnoredDirs, a.cfg.Watching.DebounceMS)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	fmt.Printf("watching %s (debounce %dms), press Ctrl-C to stop\n", a.root, a.cfg.Watching.DebounceMS)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("stopping")
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, a, ev)
		}
	}
}

func handleWatchEvent(ctx context.Context, a *app, ev watch.Event) {
	switch ev.Type {
	case watch.EventDelete:
		fmt.Printf("deleted: %s\n", ev.Path)
		return
	default:
		fmt.Printf("changed: %s, re-learning\n", ev.Path)
	}

	result := a.learning.LearnFromCodebase(ctx, a.root, services.LearnOptions{Force: true})
	if result.Error != "" {
		fmt.Printf("  re-learn failed: %s\n", result.Error)
		return
	}
	fmt.Printf("  re-learned: %d concepts, %d patterns\n", result.ConceptsLearned, result.PatternsLearned)
}
