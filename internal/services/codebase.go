package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"anamnesis/internal/analysis"
	"anamnesis/internal/config"
	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
	"anamnesis/internal/parser"
	"anamnesis/internal/resilience"
)

// CodebaseService answers codebase- and file-level rollup queries
// (spec §4.7's CodebaseService). Unlike LearningService it never writes
// to the backend: every result is recomputed (or served from its
// in-process LRU) straight from the filesystem, so a codebase can be
// inspected before it has ever been learned.
type CodebaseService struct {
	cfg *config.Config

	codebaseCache *resilience.Cache[string, *entities.CodebaseAnalysis]
	fileCache     *resilience.Cache[string, *entities.FileAnalysis]
}

// codebaseCacheTTL bounds how long a cached analysis is served before a
// fresh filesystem pass is forced, so edits made after an analyze_codebase
// call eventually surface without an explicit cache bypass.
const codebaseCacheTTL = 5 * time.Minute

// NewCodebaseService wires a codebase rollup service over cfg's ignore
// rules and concurrency limits.
func NewCodebaseService(cfg *config.Config) *CodebaseService {
	return &CodebaseService{
		cfg:           cfg,
		codebaseCache: resilience.NewCache[string, *entities.CodebaseAnalysis](64, codebaseCacheTTL, nil),
		fileCache:     resilience.NewCache[string, *entities.FileAnalysis](512, codebaseCacheTTL, nil),
	}
}

// AnalyzeCodebase walks path, analyzing every supported file it finds.
// include_complexity rolls per-function complexity up to a codebase-wide
// FileComplexity; include_dependencies builds the import graph and its
// metrics. use_cache serves (and populates) the in-process LRU keyed on
// the resolved path and these same options.
func (c *CodebaseService) AnalyzeCodebase(ctx context.Context, path string, maxFiles int, includeComplexity, includeDependencies, useCache bool) (*entities.CodebaseAnalysis, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if maxFiles <= 0 {
		maxFiles = c.cfg.Intelligence.MaxFiles
	}
	cacheKey := fmt.Sprintf("%s|%d|%v|%v", resolved, maxFiles, includeComplexity, includeDependencies)
	if useCache {
		if cached, ok := c.codebaseCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	files, err := discoverFiles(resolved, c.cfg.Intelligence.IgnoredDirs, c.cfg.Intelligence.IgnoredSuffixes, maxFiles)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	timeout := time.Duration(c.cfg.Intelligence.ParseTimeoutMS) * time.Millisecond
	perFile := c.analyzeFiles(ctx, files, includeComplexity, timeout)

	out := &entities.CodebaseAnalysis{
		Path:      resolved,
		Languages: map[string]int{},
	}
	var cxResults []*fileResult
	for i, fa := range perFile {
		if fa.Error != "" {
			out.FilesFailed++
		} else {
			out.FilesAnalyzed++
			out.Languages[fa.Language]++
		}
		out.Files = append(out.Files, *fa)
		if includeDependencies {
			cxResults = append(cxResults, c.toFileResult(files[i], fa))
		}
	}

	if includeComplexity {
		rollup := codebaseComplexityRollup(perFile)
		out.Complexity = rollup
	}
	if includeDependencies {
		graph := buildDependencyGraph(cxResults)
		metrics := analysis.ComputeMetrics(graph)
		graph.Cycles = analysis.FindCycles(graph)
		out.DependencyGraph = graph
		out.GraphMetrics = &metrics
	}

	if useCache {
		c.codebaseCache.Set(cacheKey, out)
	}
	return out, nil
}

// AnalyzeFile analyzes a single file, optionally computing its complexity.
func (c *CodebaseService) AnalyzeFile(ctx context.Context, path string, includeComplexity, useCache bool) (*entities.FileAnalysis, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cacheKey := fmt.Sprintf("%s|%v", resolved, includeComplexity)
	if useCache {
		if cached, ok := c.fileCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	timeout := time.Duration(c.cfg.Intelligence.ParseTimeoutMS) * time.Millisecond
	fa := c.analyzeOneFile(ctx, resolved, includeComplexity, timeout)

	if useCache {
		c.fileCache.Set(cacheKey, fa)
	}
	return fa, nil
}

// GetCodebaseHealth scores a codebase from its hotspot count, average
// maintainability and any detected dependency cycles.
func (c *CodebaseService) GetCodebaseHealth(ctx context.Context, path string) (*entities.CodebaseHealth, error) {
	ca, err := c.AnalyzeCodebase(ctx, path, 0, true, true, true)
	if err != nil {
		return nil, err
	}

	score := 100.0
	var issues, recs []string

	if ca.FilesFailed > 0 {
		score -= float64(ca.FilesFailed) * 2
		issues = append(issues, fmt.Sprintf("%d file(s) failed to parse", ca.FilesFailed))
	}
	if ca.Complexity != nil {
		switch ca.Complexity.MaintainabilityBand {
		case entities.BandD, entities.BandF:
			score -= 25
			issues = append(issues, fmt.Sprintf("low maintainability band %s", ca.Complexity.MaintainabilityBand))
			recs = append(recs, "refactor the largest hotspots before adding new features")
		case entities.BandC:
			score -= 10
			issues = append(issues, "maintainability band C")
		}
		if n := len(ca.Complexity.Hotspots); n > 0 {
			score -= float64(n)
			issues = append(issues, fmt.Sprintf("%d cyclomatic-complexity hotspot(s)", n))
		}
	}
	if ca.DependencyGraph != nil && len(ca.DependencyGraph.Cycles) > 0 {
		score -= float64(len(ca.DependencyGraph.Cycles)) * 10
		issues = append(issues, fmt.Sprintf("%d circular dependency chain(s)", len(ca.DependencyGraph.Cycles)))
		recs = append(recs, "break the reported import cycles")
	}
	if score < 0 {
		score = 0
	}

	return &entities.CodebaseHealth{
		Healthy:         score >= 60,
		Score:           score,
		Issues:          issues,
		Recommendations: recs,
	}, nil
}

// GetFileStats counts discovered files by extension.
func (c *CodebaseService) GetFileStats(path string) (map[string]int, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	files, err := discoverFiles(resolved, c.cfg.Intelligence.IgnoredDirs, c.cfg.Intelligence.IgnoredSuffixes, c.cfg.Intelligence.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	stats := map[string]int{}
	for _, f := range files {
		ext := strings.TrimPrefix(filepath.Ext(f), ".")
		if ext == "" {
			ext = "(none)"
		}
		stats[ext]++
	}
	return stats, nil
}

// analyzeFiles analyzes files concurrently, bounded by cfg.MaxConcurrent,
// mirroring LearningService.parseAndExtract's one-Wrapper-per-goroutine
// pool but without any store writes or pattern learning.
func (c *CodebaseService) analyzeFiles(ctx context.Context, files []string, includeComplexity bool, timeout time.Duration) []*entities.FileAnalysis {
	out := make([]*entities.FileAnalysis, len(files))
	sem := make(chan struct{}, maxInt(1, c.cfg.MaxConcurrent))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			fa := c.analyzeOneFile(egCtx, path, includeComplexity, timeout)
			mu.Lock()
			out[i] = fa
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func (c *CodebaseService) analyzeOneFile(ctx context.Context, path string, includeComplexity bool, timeout time.Duration) *entities.FileAnalysis {
	fa := &entities.FileAnalysis{FilePath: path}

	language := parser.DetectLanguage(path)
	if language == "" {
		fa.Error = "unsupported file type"
		return fa
	}
	fa.Language = language

	source, err := os.ReadFile(path)
	if err != nil {
		fa.Error = err.Error()
		return fa
	}

	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	w, err := parser.NewWrapper(language)
	if err != nil {
		fa.Error = err.Error()
		return fa
	}
	astCtx, err := w.Parse(fileCtx, path, source)
	if err != nil {
		fa.Error = err.Error()
		return fa
	}

	fa.Symbols = extract.ExtractSymbols(astCtx, false)
	fa.Imports = extract.ExtractImports(astCtx)
	fa.Patterns = extract.DetectPatterns(astCtx, fa.Symbols, extract.DefaultPatternConfig())

	if includeComplexity {
		lines := strings.Split(astCtx.SourceCode, "\n")
		fc := &entities.FileComplexity{FilePath: path}
		fnNodes := parser.FindNodes(astCtx.Root, []string{string(entities.NodeFunction), string(entities.NodeMethod)}, nil)
		var totalVolume float64
		for _, fn := range fnNodes {
			fx := analysis.AnalyzeFunction(fn, language, lines)
			fx.IsHotspot = fx.Cyclomatic >= c.cfg.Intelligence.HotspotThreshold
			fc.Functions = append(fc.Functions, fx)
			fc.TotalCyclomatic += fx.Cyclomatic
			fc.TotalCognitive += fx.Cognitive
			totalVolume += fx.Halstead.Volume
		}
		if n := len(fc.Functions); n > 0 {
			fc.AvgCyclomatic = float64(fc.TotalCyclomatic) / float64(n)
		}
		fc.LOC = analysis.ClassifyLOC(lines, language)
		fc.MaintainabilityIndex = analysis.MaintainabilityIndex(totalVolume, fc.TotalCyclomatic, fc.LOC.Code)
		fc.MaintainabilityBand = analysis.BandFor(fc.MaintainabilityIndex)
		fc.Hotspots = topHotspots(fc.Functions, 10)
		fa.Complexity = fc
	}

	return fa
}

// toFileResult re-packages a FileAnalysis as a fileResult so it can feed
// buildDependencyGraph, which only needs FilePath+Imports.
func (c *CodebaseService) toFileResult(path string, fa *entities.FileAnalysis) *fileResult {
	return &fileResult{path: path, language: fa.Language, imports: fa.Imports, err: errorFrom(fa.Error)}
}

func errorFrom(msg string) error {
	if msg == "" {
		return nil
	}
	return fmt.Errorf("%s", msg)
}

// codebaseComplexityRollup folds every successfully analyzed file's
// FileComplexity into one codebase-wide summary.
func codebaseComplexityRollup(files []*entities.FileAnalysis) *entities.FileComplexity {
	rollup := &entities.FileComplexity{}
	var totalVolume float64
	var fnCount int
	for _, fa := range files {
		if fa.Complexity == nil {
			continue
		}
		rollup.Functions = append(rollup.Functions, fa.Complexity.Functions...)
		rollup.TotalCyclomatic += fa.Complexity.TotalCyclomatic
		rollup.TotalCognitive += fa.Complexity.TotalCognitive
		rollup.LOC.Total += fa.Complexity.LOC.Total
		rollup.LOC.Code += fa.Complexity.LOC.Code
		rollup.LOC.Comments += fa.Complexity.LOC.Comments
		rollup.LOC.Blanks += fa.Complexity.LOC.Blanks
		fnCount += len(fa.Complexity.Functions)
		for _, fn := range fa.Complexity.Functions {
			totalVolume += fn.Halstead.Volume
		}
	}
	if fnCount > 0 {
		rollup.AvgCyclomatic = float64(rollup.TotalCyclomatic) / float64(fnCount)
	}
	rollup.MaintainabilityIndex = analysis.MaintainabilityIndex(totalVolume, rollup.TotalCyclomatic, rollup.LOC.Code)
	rollup.MaintainabilityBand = analysis.BandFor(rollup.MaintainabilityIndex)
	rollup.Hotspots = topHotspots(rollup.Functions, 10)
	return rollup
}
