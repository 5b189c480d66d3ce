package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"anamnesis/internal/logging"
	"anamnesis/internal/parser"
)

// FSWatcher is the fsnotify-backed Watcher. fsnotify itself only watches
// the directories it's explicitly told about, so FSWatcher walks root
// once at Start and adds every subdirectory, skipping anything in
// ignoredDirs.
type FSWatcher struct {
	root        string
	ignoredDirs []string
	debounceDur time.Duration

	watcher *fsnotify.Watcher
	events  chan Event

	mu          sync.Mutex
	debounceMap map[string]pendingEvent
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

type pendingEvent struct {
	eventType EventType
	seenAt    time.Time
}

// NewFSWatcher creates a watcher over root. debounceMS non-positive falls
// back to 500ms (spec's default watching.debounce_ms).
func NewFSWatcher(root string, ignoredDirs []string, debounceMS int) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounceMS <= 0 {
		debounceMS = 500
	}
	return &FSWatcher{
		root:        root,
		ignoredDirs: ignoredDirs,
		debounceDur: time.Duration(debounceMS) * time.Millisecond,
		watcher:     w,
		events:      make(chan Event, 64),
		debounceMap: make(map[string]pendingEvent),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Events implements Watcher.
func (w *FSWatcher) Events() <-chan Event { return w.events }

// Start implements Watcher: walks root adding every subdirectory to the
// underlying fsnotify watcher, then runs the event loop in a goroutine.
func (w *FSWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	}); err != nil {
		logging.Get(logging.CategoryWatch).Warn("walking %s: %v", w.root, err)
	}

	logging.Watch("watching %s (%d directories)", w.root, len(w.watcher.WatchList()))
	go w.run(ctx)
	return nil
}

// Stop implements Watcher.
func (w *FSWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
	close(w.events)
}

func (w *FSWatcher) isIgnoredDir(name string) bool {
	for _, d := range w.ignoredDirs {
		if d == name {
			return true
		}
	}
	return false
}

func (w *FSWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)
		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *FSWatcher) handleEvent(ev fsnotify.Event) {
	if parser.DetectLanguage(ev.Name) == "" {
		// A created directory still needs watching, even though it isn't
		// itself a source file.
		if ev.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.isIgnoredDir(info.Name()) {
				_ = w.watcher.Add(ev.Name)
			}
		}
		return
	}

	var eventType EventType
	switch {
	case ev.Op&fsnotify.Create != 0:
		eventType = EventCreate
	case ev.Op&fsnotify.Write != 0:
		eventType = EventModify
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		eventType = EventDelete
	default:
		return
	}

	w.mu.Lock()
	w.debounceMap[ev.Name] = pendingEvent{eventType: eventType, seenAt: time.Now()}
	w.mu.Unlock()
}

func (w *FSWatcher) flushSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []Event
	for path, pending := range w.debounceMap {
		if now.Sub(pending.seenAt) >= w.debounceDur {
			settled = append(settled, Event{Path: path, Type: pending.eventType})
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, ev := range settled {
		select {
		case w.events <- ev:
		default:
			logging.Get(logging.CategoryWatch).Warn("events channel full, dropping event for %s", ev.Path)
		}
	}
}
