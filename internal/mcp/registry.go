package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler executes one tool call. It returns the tool's result payload —
// always a success envelope per spec §7, success:false on tool-level
// failure rather than a Go error — unless something at the protocol
// boundary itself went wrong (bad argument types), in which case it
// returns an error and the server reports it as a tool-level error too.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool is one entry in the server's tool surface.
type Tool struct {
	Name        string
	Description string
	Schema      toolSchema
	Handler     Handler
}

// Registry holds every tool this server exposes, grounded on the
// teacher's internal/tools.Registry lookup-by-name/thread-safety shape,
// adapted from client-side tool dispatch to MCP tool serving.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, panicking on a duplicate name — tool sets are
// wired once at server startup, not at runtime.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		panic(fmt.Sprintf("mcp: tool already registered: %s", t.Name))
	}
	r.tools[t.Name] = &t
}

// Get returns a tool by name, or nil if unknown.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns every registered tool, sorted by name for deterministic
// tools/list output.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
