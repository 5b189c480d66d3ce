package services

import (
	"context"
	"fmt"
	"time"

	"anamnesis/internal/config"
	"anamnesis/internal/entities"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/parser"
	"anamnesis/internal/store"
)

// SystemService answers the tool surface's operational-health queries
// (health_check, get_system_status, get_intelligence_metrics,
// get_performance_status) — spec §6.1's table. It never mutates state.
type SystemService struct {
	store    *store.Store
	cfg      *config.Config
	index    *intelligence.ConceptIndex
	patterns *intelligence.PatternEngine
}

// NewSystemService wires the diagnostics surface over the same backend
// and shared caches the other services use.
func NewSystemService(s *store.Store, cfg *config.Config, index *intelligence.ConceptIndex, patterns *intelligence.PatternEngine) *SystemService {
	return &SystemService{store: s, cfg: cfg, index: index, patterns: patterns}
}

// HealthCheck pings the backend and reports schema migration status for
// the project at path.
func (s *SystemService) HealthCheck(path string) (healthy bool, checks map[string]any, issues []string) {
	checks = map[string]any{}

	if err := s.store.DB().Ping(); err != nil {
		checks["database"] = "unreachable"
		issues = append(issues, fmt.Sprintf("database ping failed: %v", err))
	} else {
		checks["database"] = "ok"
	}

	status, err := s.store.Status()
	if err != nil {
		checks["migrations"] = "unknown"
		issues = append(issues, fmt.Sprintf("migration status unavailable: %v", err))
	} else {
		checks["migrations"] = map[string]any{
			"current_version": status.CurrentVersion,
			"pending":         len(status.Pending),
		}
		if len(status.Pending) > 0 {
			issues = append(issues, fmt.Sprintf("%d pending migration(s)", len(status.Pending)))
		}
	}

	checks["path"] = path
	return len(issues) == 0, checks, issues
}

// GetSystemStatus reports coarse service health plus, when requested,
// backend metrics and parser-registry diagnostics.
func (s *SystemService) GetSystemStatus(includeMetrics, includeDiagnostics bool) map[string]any {
	services := map[string]any{
		"store":    "up",
		"index":    "up",
		"patterns": "up",
	}
	status := "healthy"
	if dbErr := s.store.DB().Ping(); dbErr != nil {
		status = "unhealthy"
		services["store"] = "down"
	}

	out := map[string]any{
		"status":   status,
		"services": services,
	}

	if includeMetrics {
		concepts, _ := s.store.ListAllConcepts()
		out["metrics"] = map[string]any{
			"indexed_concepts": s.index.Len(),
			"stored_concepts":  len(concepts),
			"stored_patterns":  len(s.patterns.Patterns()),
		}
	}
	if includeDiagnostics {
		out["diagnostics"] = map[string]any{
			"supported_languages": parser.ListSupported(),
			"max_concurrent":      s.cfg.MaxConcurrent,
			"mcp_server_mode":     s.cfg.MCPServerMode,
		}
	}
	return out
}

// GetIntelligenceMetrics reports how much has been learned so far,
// optionally broken down by concept type.
func (s *SystemService) GetIntelligenceMetrics(includeBreakdown bool) (map[string]any, error) {
	concepts, err := s.store.ListAllConcepts()
	if err != nil {
		return nil, fmt.Errorf("listing concepts: %w", err)
	}
	patterns := s.patterns.Patterns()

	out := map[string]any{
		"total_concepts":  len(concepts),
		"total_patterns":  len(patterns),
		"has_intelligence": len(concepts) > 0,
	}
	if includeBreakdown {
		breakdown := map[entities.ConceptType]int{}
		for _, c := range concepts {
			breakdown[c.ConceptType]++
		}
		out["breakdown"] = breakdown
	}
	return out, nil
}

// GetPerformanceStatus reports cache/index sizing and, when requested,
// runs a tiny in-process parse as a smoke-test benchmark.
func (s *SystemService) GetPerformanceStatus(ctx context.Context, runBenchmark bool) map[string]any {
	out := map[string]any{
		"status": "healthy",
		"metrics": map[string]any{
			"indexed_concepts": s.index.Len(),
		},
	}
	if runBenchmark {
		start := time.Now()
		w, err := parser.NewWrapper("go")
		if err == nil {
			_, _ = w.Parse(ctx, "benchmark.go", []byte("package main\nfunc main() {}\n"))
		}
		out["benchmark"] = map[string]any{
			"operation":   "parse_trivial_go_file",
			"elapsed_ms":  time.Since(start).Milliseconds(),
			"succeeded":   err == nil,
		}
	}
	return out
}
