// Package services orchestrates the parser/extract/analysis/intelligence
// layers into the operations the tool surface calls (spec §4.7):
// LearningService ingests a codebase, IntelligenceService answers queries
// over what was learned, SessionManager journals work sessions and
// decisions, and CodebaseService aggregates codebase-level rollups.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"anamnesis/internal/analysis"
	"anamnesis/internal/config"
	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/logging"
	"anamnesis/internal/parser"
	"anamnesis/internal/store"
)

// defaultIgnoredLockFiles are hard-wired regardless of config, mirroring
// the fixed ignore set spec §4.7 names alongside the configurable
// directories/suffixes.
var defaultIgnoredLockFiles = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"Cargo.lock": true, "go.sum": true, "poetry.lock": true, "Gemfile.lock": true,
}

// LearnOptions tunes one learn_from_codebase run.
type LearnOptions struct {
	Force    bool
	MaxFiles int
	// ProgressCallback is invoked once per phase: (currentPhase, totalPhases, message).
	ProgressCallback func(current, total int, message string)
}

// ProgressTotalPhases is the fixed phase count learn_from_codebase reports
// progress against (spec §4.7).
const ProgressTotalPhases = 6

// LearningService is the ingest orchestrator (spec §4.7's LearningService).
type LearningService struct {
	store    *store.Store
	cfg      *config.Config
	index    *intelligence.ConceptIndex
	patterns *intelligence.PatternEngine
}

// NewLearningService wires a learning pipeline over a backend store, a
// shared concept index and a shared pattern engine (the same instances
// IntelligenceService queries, so a learn run is immediately visible).
func NewLearningService(s *store.Store, cfg *config.Config, index *intelligence.ConceptIndex, patterns *intelligence.PatternEngine) *LearningService {
	return &LearningService{store: s, cfg: cfg, index: index, patterns: patterns}
}

func (l *LearningService) report(opts LearnOptions, phase int, msg string) {
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(phase, ProgressTotalPhases, msg)
	}
}

// LearnFromCodebase runs the 6-phase ingest pipeline over path (spec
// §4.7): discover, parse, extract, analyze, index, persist.
func (l *LearningService) LearnFromCodebase(ctx context.Context, path string, opts LearnOptions) entities.LearningResult {
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryServices, "LearnFromCodebase")
	defer timer.Stop()

	if !opts.Force {
		if n, err := l.store.CountConceptsByPathPrefix(path); err == nil && n > 0 {
			blueprint, _ := l.buildBlueprint(path)
			return entities.LearningResult{
				Success:       true,
				Insights:      []string{"Using existing intelligence"},
				TimeElapsedMS: time.Since(start).Milliseconds(),
				Blueprint:     blueprint,
			}
		}
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = l.cfg.Intelligence.MaxFiles
	}

	// Phase 1: discover.
	l.report(opts, 1, "discovering files")
	files, err := discoverFiles(path, l.cfg.Intelligence.IgnoredDirs, l.cfg.Intelligence.IgnoredSuffixes, maxFiles)
	if err != nil {
		return entities.LearningResult{Error: fmt.Sprintf("discovering files: %v", err), TimeElapsedMS: time.Since(start).Milliseconds()}
	}

	// Phases 2-3: parse + extract, pipelined across a bounded worker pool.
	l.report(opts, 2, fmt.Sprintf("parsing %d files", len(files)))
	parseTimeout := time.Duration(l.cfg.Intelligence.ParseTimeoutMS) * time.Millisecond
	results := l.parseAndExtract(ctx, files, parseTimeout)

	l.report(opts, 3, "extracting symbols, imports and patterns")

	// Phase 4: complexity + dependency graph.
	l.report(opts, 4, "analyzing complexity and dependencies")
	l.analyzeComplexity(results)
	graph := buildDependencyGraph(results)
	graphMetrics := analysis.ComputeMetrics(graph)

	// Phase 5: index concepts into the embedding engine.
	l.report(opts, 5, "indexing concepts")
	var concepts []entities.SemanticConcept
	for _, r := range results {
		if r.err != nil {
			continue
		}
		for _, sym := range r.symbols {
			concepts = append(concepts, engineConceptToStorage(sym))
		}
	}
	if len(concepts) > 0 {
		if _, err := l.index.AddConceptsBatch(ctx, concepts); err != nil {
			logging.Services("indexing concepts: %v", err)
		}
	}

	// Phase 6: persist concepts, patterns, file intelligence, blueprint.
	l.report(opts, 6, "persisting to backend")
	conceptsLearned, err := l.persistConcepts(concepts)
	if err != nil {
		return entities.LearningResult{Error: fmt.Sprintf("persisting concepts: %v", err), TimeElapsedMS: time.Since(start).Milliseconds()}
	}
	patternsLearned := l.persistPatterns()
	featuresLearned := l.persistFileIntelligence(results, graphMetrics)

	blueprint := l.deriveBlueprint(path, results, files)
	l.persistBlueprint(blueprint)

	var insights []string
	if len(graph.Cycles) > 0 {
		insights = append(insights, fmt.Sprintf("%d circular dependency group(s) detected", len(graph.Cycles)))
	}

	return entities.LearningResult{
		Success:         true,
		ConceptsLearned: conceptsLearned,
		PatternsLearned: patternsLearned,
		FeaturesLearned: featuresLearned,
		Insights:        insights,
		TimeElapsedMS:   time.Since(start).Milliseconds(),
		Blueprint:        blueprint,
	}
}

// fileResult bundles one file's pipeline output, successful or not.
type fileResult struct {
	path     string
	language string
	source   []byte
	ctx      *entities.ASTContext
	symbols  []entities.ExtractedSymbol
	imports  []entities.ExtractedImport
	detected []entities.DetectedPattern
	complexity entities.FileComplexity
	err      error
}

// parseAndExtract runs phases 2-3 across a bounded pool of goroutines, one
// *parser.Wrapper per in-flight file since Wrapper is not safe for
// concurrent reuse, grounded on the teacher's errgroup-bounded parallel
// gathering idiom in internal/campaign/intelligence_gatherer.go.
func (l *LearningService) parseAndExtract(ctx context.Context, files []string, perFileTimeout time.Duration) []*fileResult {
	results := make([]*fileResult, len(files))
	sem := make(chan struct{}, maxInt(l.cfg.MaxConcurrent, 1))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i, f := range files {
		i, f := i, f
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			res := l.parseOneFile(egCtx, f, perFileTimeout)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait() // per-file errors are captured on fileResult, never aborting the run
	return results
}

func (l *LearningService) parseOneFile(ctx context.Context, path string, timeout time.Duration) *fileResult {
	lang := parser.DetectLanguage(path)
	source, err := os.ReadFile(path)
	if err != nil {
		return &fileResult{path: path, language: lang, err: fmt.Errorf("reading %s: %w", path, err)}
	}

	fctx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	w, err := parser.NewWrapper(lang)
	if err != nil {
		// No grammar wired for this language; record it but do not fail
		// the whole run (spec §4.1/§7's generic-path tolerance).
		return &fileResult{path: path, language: lang, source: source, err: err}
	}

	astCtx, err := w.Parse(fctx, path, source)
	if err != nil {
		logging.Services("parse error in %s: %v", path, err)
		return &fileResult{path: path, language: lang, source: source, err: err}
	}

	symbols := extract.ExtractSymbols(astCtx, false)
	imports := extract.ExtractImports(astCtx)
	detected := l.patterns.Detect(astCtx, symbols)
	l.patterns.Learn(path, detected)

	return &fileResult{
		path: path, language: lang, source: source, ctx: astCtx,
		symbols: symbols, imports: imports, detected: detected,
	}
}

// analyzeComplexity computes FileComplexity for every successfully parsed
// file in place, locating function/method nodes via parser.FindNodes over
// the closed NodeType enum.
func (l *LearningService) analyzeComplexity(results []*fileResult) {
	for _, r := range results {
		if r.err != nil || r.ctx == nil {
			continue
		}
		sourceLines := strings.Split(r.ctx.SourceCode, "\n")
		fnNodes := parser.FindNodes(r.ctx.Root, []string{string(entities.NodeFunction), string(entities.NodeMethod)}, nil)

		fc := entities.FileComplexity{FilePath: r.path}
		var totalVolume float64
		for _, fn := range fnNodes {
			if fn.StartLine < 1 || fn.EndLine > len(sourceLines) || fn.EndLine < fn.StartLine {
				continue
			}
			funcComplexity := analysis.AnalyzeFunction(fn, r.language, sourceLines)
			funcComplexity.FilePath = r.path
			funcComplexity.IsHotspot = funcComplexity.Cyclomatic >= l.cfg.Intelligence.HotspotThreshold
			fc.Functions = append(fc.Functions, funcComplexity)
			fc.TotalCyclomatic += funcComplexity.Cyclomatic
			fc.TotalCognitive += funcComplexity.Cognitive
			totalVolume += funcComplexity.Halstead.Volume
		}
		if len(fc.Functions) > 0 {
			fc.AvgCyclomatic = float64(fc.TotalCyclomatic) / float64(len(fc.Functions))
		}
		fc.LOC = analysis.ClassifyLOC(sourceLines, r.language)
		fc.MaintainabilityIndex = analysis.MaintainabilityIndex(totalVolume, fc.TotalCyclomatic, fc.LOC.Code)
		fc.MaintainabilityBand = analysis.BandFor(fc.MaintainabilityIndex)
		fc.Hotspots = topHotspots(fc.Functions, 10)
		r.complexity = fc
	}
}

func topHotspots(fns []entities.FunctionComplexity, limit int) []entities.FunctionComplexity {
	var hot []entities.FunctionComplexity
	for _, fn := range fns {
		if fn.IsHotspot {
			hot = append(hot, fn)
		}
	}
	sort.Slice(hot, func(i, j int) bool { return hot[i].Cyclomatic > hot[j].Cyclomatic })
	if len(hot) > limit {
		hot = hot[:limit]
	}
	return hot
}

// buildDependencyGraph folds every file's extracted imports into a module
// graph. Module resolution stays deliberately coarse: an import's module
// string is the node identifier, marked external unless its IsStdlib flag
// says otherwise — full path resolution (relative imports to on-disk
// files) is out of scope for the graph's purpose here, which is cycle and
// fan-in/fan-out detection rather than a precise build graph.
func buildDependencyGraph(results []*fileResult) *entities.DependencyGraph {
	var edges []entities.DependencyEdge
	stdlibPaths := map[string]bool{}
	externalPaths := map[string]bool{}

	for _, r := range results {
		if r.err != nil {
			continue
		}
		for _, imp := range r.imports {
			kind := entities.EdgeImport
			if imp.Kind == entities.ImportFrom {
				kind = entities.EdgeFromImport
			} else if imp.Kind == entities.ImportDynamic {
				kind = entities.EdgeDynamic
			}
			edges = append(edges, entities.DependencyEdge{From: r.path, To: imp.Module, Kind: kind})
			if imp.IsStdlib {
				stdlibPaths[imp.Module] = true
			} else {
				externalPaths[imp.Module] = true
			}
		}
	}
	return analysis.BuildDependencyGraph(edges, externalPaths, stdlibPaths)
}

func (l *LearningService) persistConcepts(concepts []entities.SemanticConcept) (int, error) {
	n := 0
	for i := range concepts {
		c := concepts[i]
		if err := l.store.UpsertConcept(&c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (l *LearningService) persistPatterns() int {
	n := 0
	for _, p := range l.patterns.Patterns() {
		p := p
		if err := l.store.UpsertPattern(&p); err != nil {
			logging.Services("persisting pattern %s: %v", p.Name, err)
			continue
		}
		n++
	}
	return n
}

func (l *LearningService) persistFileIntelligence(results []*fileResult, graphMetrics entities.GraphMetrics) int {
	n := 0
	for _, r := range results {
		if r.err != nil {
			continue
		}
		meta := map[string]any{
			"language":             r.language,
			"concepts":             len(r.symbols),
			"patterns":             len(r.detected),
			"total_cyclomatic":     r.complexity.TotalCyclomatic,
			"maintainability_band": string(r.complexity.MaintainabilityBand),
			"loc":                  r.complexity.LOC.Code,
			"instability":          graphMetrics.Instability[r.path],
		}
		fi := &entities.FileIntelligence{FilePath: r.path, Metadata: meta}
		if err := l.store.UpsertFileIntelligence(fi); err != nil {
			logging.Services("persisting file intelligence for %s: %v", r.path, err)
			continue
		}
		n++
	}
	return n
}

// deriveBlueprint builds a ProjectBlueprint from this run's results: tech
// stack by language presence file counts, entry-point/key-directory
// heuristics grounded on the teacher's detectLanguageFromFiles/
// detectDependencies scanning idiom in internal/init/scanner.go.
func (l *LearningService) deriveBlueprint(root string, results []*fileResult, files []string) *entities.ProjectBlueprint {
	langCounts := map[string]int{}
	for _, r := range results {
		if r.language != "" {
			langCounts[r.language]++
		}
	}
	var techStack []string
	for lang := range langCounts {
		techStack = append(techStack, lang)
	}
	sort.Slice(techStack, func(i, j int) bool { return langCounts[techStack[i]] > langCounts[techStack[j]] })

	entryPoints := detectEntryPoints(root, files)
	keyDirs := detectKeyDirectories(files)

	concepts, _ := l.store.CountConceptsByPathPrefix(root)
	patterns := l.patterns.Patterns()

	return &entities.ProjectBlueprint{
		TechStack:    techStack,
		Architecture: architectureGuess(keyDirs),
		LearningStatus: entities.LearningStatus{
			HasIntelligence: concepts > 0,
			ConceptsStored:  concepts,
			PatternsStored:  len(patterns),
			Persisted:       true,
		},
		EntryPoints:    entryPoints,
		KeyDirectories: keyDirs,
	}
}

func (l *LearningService) buildBlueprint(path string) (*entities.ProjectBlueprint, error) {
	concepts, err := l.store.CountConceptsByPathPrefix(path)
	if err != nil {
		return nil, err
	}
	entryPoints, _ := l.store.ListEntryPoints()
	keyDirs, _ := l.store.ListKeyDirectories()
	patterns := l.patterns.Patterns()
	return &entities.ProjectBlueprint{
		LearningStatus: entities.LearningStatus{
			HasIntelligence: concepts > 0,
			ConceptsStored:  concepts,
			PatternsStored:  len(patterns),
			Persisted:       true,
		},
		EntryPoints:    entryPoints,
		KeyDirectories: keyDirs,
	}, nil
}

func (l *LearningService) persistBlueprint(b *entities.ProjectBlueprint) {
	for _, ep := range b.EntryPoints {
		ep := ep
		if err := l.store.AddEntryPoint(&ep); err != nil {
			logging.Services("persisting entry point %s: %v", ep.Name, err)
		}
	}
	for _, kd := range b.KeyDirectories {
		kd := kd
		if err := l.store.AddKeyDirectory(&kd); err != nil {
			logging.Services("persisting key directory %s: %v", kd.Name, err)
		}
	}
}

// wellKnownEntryNames are file basenames commonly used as program entry
// points across the languages the registry recognizes.
var wellKnownEntryNames = map[string]bool{
	"main.go": true, "main.py": true, "__main__.py": true, "index.js": true,
	"index.ts": true, "main.rs": true, "Main.java": true, "server.js": true,
	"app.py": true, "cli.py": true,
}

func detectEntryPoints(root string, files []string) []entities.EntryPoint {
	var out []entities.EntryPoint
	for _, f := range files {
		if wellKnownEntryNames[filepath.Base(f)] {
			out = append(out, entities.EntryPoint{Name: filepath.Base(f), FilePath: f})
		}
	}
	return out
}

// architecturallySignificantDirs are directory basenames taken as a sign
// of a named architectural layer when present among the discovered files.
var architecturallySignificantDirs = map[string]bool{
	"cmd": true, "internal": true, "services": true, "handlers": true,
	"controllers": true, "models": true, "repositories": true, "api": true,
	"src": true, "lib": true, "pkg": true,
}

func detectKeyDirectories(files []string) []entities.KeyDirectory {
	seen := map[string]bool{}
	var out []entities.KeyDirectory
	for _, f := range files {
		for _, part := range strings.Split(filepath.Dir(f), string(filepath.Separator)) {
			if architecturallySignificantDirs[part] && !seen[part] {
				seen[part] = true
				out = append(out, entities.KeyDirectory{Name: part})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func architectureGuess(keyDirs []entities.KeyDirectory) string {
	has := map[string]bool{}
	for _, k := range keyDirs {
		has[k.Name] = true
	}
	switch {
	case has["controllers"] && has["models"]:
		return "mvc"
	case has["services"] && has["repositories"]:
		return "layered"
	case has["cmd"] && has["internal"]:
		return "go-standard-layout"
	default:
		return "unknown"
	}
}

// discoverFiles walks root honoring ignoredDirs (skipped entirely),
// ignoredSuffixes and the fixed lock-file set (files skipped), stopping
// once maxFiles have been collected (spec §4.7 phase 1).
func discoverFiles(root string, ignoredDirs, ignoredSuffixes []string, maxFiles int) ([]string, error) {
	ignoreDir := make(map[string]bool, len(ignoredDirs))
	for _, d := range ignoredDirs {
		ignoreDir[d] = true
	}

	var out []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != root && ignoreDir[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(out) >= maxFiles {
			return filepath.SkipAll
		}
		name := info.Name()
		if defaultIgnoredLockFiles[name] {
			return nil
		}
		for _, suf := range ignoredSuffixes {
			if strings.HasSuffix(name, suf) {
				return nil
			}
		}
		if parser.DetectLanguage(p) == "" {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
