// Package watch defines the filesystem-watcher boundary (spec §6, C9):
// a Watcher interface and an fsnotify-backed implementation that debounces
// rapid-fire events and delivers one settled Event per changed file.
// anamnesis treats this purely as a boundary — the CLI's watch subcommand
// wires it to LearningService, but the package itself makes no learning
// decisions.
package watch

import "context"

// EventType classifies what happened to a watched file.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
)

// Event is one debounced, settled filesystem change.
type Event struct {
	Path string
	Type EventType
}

// Watcher watches a directory tree and delivers debounced change events
// on its Events channel until Stop is called or ctx is canceled.
type Watcher interface {
	// Start begins watching root in the background. Non-blocking.
	Start(ctx context.Context) error
	// Stop halts the watcher and closes the Events channel.
	Stop()
	// Events is the channel settled events are delivered on.
	Events() <-chan Event
}
