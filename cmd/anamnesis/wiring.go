// Package main implements the anamnesis CLI, the cobra-based boundary
// (spec §6.4) over internal/services and internal/mcp. Subcommands are
// split across cmd_*.go files, mirroring the teacher's cmd/nerd layout.
package main

import (
	"os"
	"path/filepath"

	"anamnesis/internal/config"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/intelligence/embedding"
	"anamnesis/internal/logging"
	"anamnesis/internal/services"
	"anamnesis/internal/store"
)

// app bundles everything a subcommand needs: the resolved project root,
// its config, the backend store and the service layer over it.
type app struct {
	root string
	cfg  *config.Config
	st   *store.Store

	index     *intelligence.ConceptIndex
	patterns  *intelligence.PatternEngine
	predictor *intelligence.Predictor

	learning *services.LearningService
	intelSvc *services.IntelligenceService
	sessions *services.SessionManager
	codebase *services.CodebaseService
	system   *services.SystemService
}

// openApp resolves path to an absolute project root, loads its config
// (falling back to defaults), opens the backend store, and wires the
// full service layer over it. Callers must call app.close when done.
func openApp(path string) (*app, error) {
	root := path
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	root = abs

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}

	if err := logging.Initialize(root, cfg.Logging.DebugMode, logLevel(cfg.Logging.Level), cfg.Logging.Categories); err != nil {
		logging.Get(logging.CategoryCLI).Warn("failed to initialize file logging: %v", err)
	}

	dbPath := filepath.Join(root, ".anamnesis", cfg.Storage.DBFilename)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	engine := buildEmbeddingEngine()
	index := intelligence.NewConceptIndex(engine)
	patterns := intelligence.NewPatternEngine(extractPatternConfig(cfg))
	predictor := intelligence.NewPredictor(patterns, index)

	a := &app{
		root:      root,
		cfg:       cfg,
		st:        st,
		index:     index,
		patterns:  patterns,
		predictor: predictor,
		learning:  services.NewLearningService(st, cfg, index, patterns),
		intelSvc:  services.NewIntelligenceService(st, index, patterns, predictor),
		sessions:  services.NewSessionManager(st),
		codebase:  services.NewCodebaseService(cfg),
		system:    services.NewSystemService(st, cfg, index, patterns),
	}
	return a, nil
}

func (a *app) close() {
	if a.st != nil {
		_ = a.st.Close()
	}
	_ = logging.CloseAll()
}

// buildEmbeddingEngine prefers the remote Gemini provider when an API key
// is present in the environment, falling back to the deterministic local
// engine otherwise (matching LazyEngine's own fallback-on-failure
// behavior, just decided once up front here).
func buildEmbeddingEngine() *embedding.LazyEngine {
	cfg := embedding.DefaultConfig()
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Provider = "genai"
		cfg.GenAIAPIKey = key
	}
	return embedding.NewLazyEngine(cfg)
}

func logLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func extractPatternConfig(cfg *config.Config) extract.PatternConfig {
	pc := extract.DefaultPatternConfig()
	pc.MinConfidence = cfg.Intelligence.MinConfidence
	pc.GodClassMethodCount = cfg.Intelligence.GodClassThreshold
	pc.LongMethodLOC = cfg.Intelligence.LongMethodLOC
	return pc
}
