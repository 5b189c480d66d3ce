package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/config"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/intelligence/embedding"
	"anamnesis/internal/services"
	"anamnesis/internal/store"
)

func newTestServices(t *testing.T) Services {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "anamnesis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	index := intelligence.NewConceptIndex(embedding.NewFallbackEngine(true))
	patterns := intelligence.NewPatternEngine(extract.DefaultPatternConfig())
	predictor := intelligence.NewPredictor(patterns, index)

	return Services{
		Learning:     services.NewLearningService(s, cfg, index, patterns),
		Intelligence: services.NewIntelligenceService(s, index, patterns, predictor),
		Sessions:     services.NewSessionManager(s),
		Codebase:     services.NewCodebaseService(cfg),
		System:       services.NewSystemService(s, cfg, index, patterns),
	}
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(`package main

import "fmt"

func Greet(name string) string {
	return fmt.Sprintf("hello, %s", name)
}
`), 0o644))
	return root
}

func callTool(t *testing.T, r *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	tool := r.Get(name)
	require.NotNil(t, tool, "tool %q not registered", name)
	out, err := tool.Handler(context.Background(), args)
	require.NoError(t, err)
	return out
}

func TestRegisterAllRegistersSpecTable(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r, newTestServices(t))

	want := []string{
		"health_check", "learn_codebase_intelligence", "auto_learn_if_needed",
		"get_project_blueprint", "get_semantic_insights", "search_codebase",
		"get_pattern_recommendations", "predict_coding_approach", "get_developer_profile",
		"contribute_insights", "get_system_status", "get_intelligence_metrics",
		"get_performance_status", "analyze_codebase",
		"start_session", "end_session", "get_session", "list_sessions",
		"record_decision", "get_decisions",
	}
	for _, name := range want {
		assert.NotNil(t, r.Get(name), "missing tool %q", name)
	}
	assert.Len(t, r.List(), len(want))
}

func TestHealthCheckReportsHealthy(t *testing.T) {
	r := NewRegistry()
	svcs := newTestServices(t)
	RegisterAll(r, svcs)

	out := callTool(t, r, "health_check", map[string]any{"path": "."})
	assert.Equal(t, true, out["healthy"])
}

func TestLearnThenBlueprintSeesIntelligence(t *testing.T) {
	r := NewRegistry()
	svcs := newTestServices(t)
	RegisterAll(r, svcs)
	root := writeTestRepo(t)

	learned := callTool(t, r, "learn_codebase_intelligence", map[string]any{"path": root, "force": true})
	require.Equal(t, true, learned["success"], "%v", learned["error"])
	assert.Greater(t, learned["concepts_learned"], 0)

	bp := callTool(t, r, "get_project_blueprint", map[string]any{"path": root})
	require.Equal(t, true, bp["success"])
}

func TestAutoLearnIfNeededSkipsWhenAsked(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r, newTestServices(t))
	root := writeTestRepo(t)

	out := callTool(t, r, "auto_learn_if_needed", map[string]any{"path": root, "skip_learning": true})
	assert.Equal(t, "skipped", out["status"])
	assert.Equal(t, "none", out["action_taken"])
}

func TestAutoLearnIfNeededLearnsThenShortCircuits(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r, newTestServices(t))
	root := writeTestRepo(t)

	first := callTool(t, r, "auto_learn_if_needed", map[string]any{"path": root})
	require.Equal(t, true, first["success"])
	assert.Equal(t, "learned", first["status"])

	second := callTool(t, r, "auto_learn_if_needed", map[string]any{"path": root})
	require.Equal(t, true, second["success"])
	assert.Equal(t, "already_learned", second["status"])
}

func TestSessionLifecycleThroughTools(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r, newTestServices(t))

	started := callTool(t, r, "start_session", map[string]any{"name": "writing tests"})
	require.Equal(t, true, started["success"])

	listed := callTool(t, r, "list_sessions", map[string]any{"active_only": true})
	require.Equal(t, true, listed["success"])

	decided := callTool(t, r, "record_decision", map[string]any{"decision": "use sqlite for storage"})
	require.Equal(t, true, decided["success"])

	ended := callTool(t, r, "end_session", map[string]any{})
	require.Equal(t, true, ended["success"])
}

func TestSearchCodebaseUnknownSearchTypeFallsBackToSemantic(t *testing.T) {
	r := NewRegistry()
	svcs := newTestServices(t)
	RegisterAll(r, svcs)
	root := writeTestRepo(t)
	callTool(t, r, "learn_codebase_intelligence", map[string]any{"path": root, "force": true})

	out := callTool(t, r, "search_codebase", map[string]any{"query": "greet", "search_type": "no-such-type"})
	assert.Equal(t, true, out["success"])
}

func TestGetSemanticInsightsRejectsNothingOnEmptyQuery(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r, newTestServices(t))

	out := callTool(t, r, "get_semantic_insights", map[string]any{})
	assert.Equal(t, true, out["success"])
}
