package extract

import (
	"regexp"
	"strings"

	"anamnesis/internal/entities"
)

// PatternConfig tunes threshold-driven detectors (spec §4.2).
type PatternConfig struct {
	MinConfidence       float64
	DetectAntipatterns  bool
	GodClassMethodCount int // default 20
	LongMethodLOC       int // default 50
}

// DefaultPatternConfig mirrors the spec's stated defaults.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		MinConfidence:       0.5,
		DetectAntipatterns:  false,
		GodClassMethodCount: 20,
		LongMethodLOC:       50,
	}
}

var (
	factoryMethodPrefix  = regexp.MustCompile(`^(create_|make_|new_|Create|Make|New)`)
	repositoryVerb       = regexp.MustCompile(`(?i)^(find|get|save|delete|update|list)`)
	snakeCaseRE          = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	camelCaseRE          = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	pascalCaseRE         = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
)

// DetectPatterns runs every detector over symbols extracted from one file
// and returns those whose confidence clears cfg.MinConfidence.
func DetectPatterns(ctx *entities.ASTContext, symbols []entities.ExtractedSymbol, cfg PatternConfig) []entities.DetectedPattern {
	classes := classGroups(symbols)

	var found []entities.DetectedPattern
	for _, cls := range classes {
		found = append(found, detectSingleton(cls)...)
		found = append(found, detectFactory(cls)...)
		found = append(found, detectBuilder(cls)...)
		found = append(found, detectObserver(cls)...)
		found = append(found, detectRepository(cls)...)
		found = append(found, detectService(cls)...)
		found = append(found, detectContextManager(cls)...)
		found = append(found, detectDataclass(cls)...)
	}
	found = append(found, detectProperty(symbols)...)
	found = append(found, detectAsyncPattern(ctx, symbols)...)
	found = append(found, detectLogging(symbols)...)
	found = append(found, detectErrorHandling(symbols)...)
	found = append(found, detectNamingPatterns(symbols)...)

	if cfg.DetectAntipatterns {
		found = append(found, detectAntipatterns(classes, symbols, cfg)...)
	}

	var out []entities.DetectedPattern
	for _, p := range found {
		if p.Confidence() >= cfg.MinConfidence {
			out = append(out, p)
		}
	}
	return out
}

// classGroup bundles a class symbol with its methods: METHOD symbols and
// FUNCTION symbols (Python methods are extracted as functions) whose
// QualifiedName has the prefix "ClassName.". Properties are not included.
type classGroup struct {
	class   entities.ExtractedSymbol
	methods []entities.ExtractedSymbol
}

func classGroups(symbols []entities.ExtractedSymbol) []classGroup {
	var groups []classGroup
	for _, s := range symbols {
		if s.SymbolType == entities.ConceptClass {
			groups = append(groups, classGroup{class: s})
		}
	}
	for i := range groups {
		prefix := groups[i].class.Name + "."
		for _, s := range symbols {
			isMember := s.SymbolType == entities.ConceptMethod || s.SymbolType == entities.ConceptFunction
			if isMember && strings.HasPrefix(s.QualifiedName, prefix) {
				groups[i].methods = append(groups[i].methods, s)
			}
		}
	}
	return groups
}

func methodNames(g classGroup) []string {
	names := make([]string, len(g.methods))
	for i, m := range g.methods {
		names[i] = m.Name
	}
	return names
}

func hasMethod(g classGroup, names ...string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	for _, m := range methodNames(g) {
		if set[m] {
			return true
		}
	}
	return false
}

func detectSingleton(g classGroup) []entities.DetectedPattern {
	hasInstanceField := false
	for _, m := range g.methods {
		if m.Name == "_instance" || m.Name == "instance" {
			hasInstanceField = true
		}
	}
	hasAccessor := hasMethod(g, "get_instance", "GetInstance", "Instance")
	if !hasInstanceField && !hasAccessor {
		return nil
	}
	evidence := []entities.EvidenceContribution{}
	if hasInstanceField {
		evidence = append(evidence, entities.EvidenceContribution{Description: "has _instance attribute", Confidence: 0.4})
	}
	if hasAccessor {
		evidence = append(evidence, entities.EvidenceContribution{Description: "has get_instance accessor", Confidence: 0.4})
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternSingleton, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: evidence,
	}}
}

func detectFactory(g classGroup) []entities.DetectedPattern {
	factoryMethods := 0
	for _, m := range g.methods {
		if factoryMethodPrefix.MatchString(m.Name) {
			factoryMethods++
		}
	}
	nameSuffix := strings.HasSuffix(g.class.Name, "Factory")
	if factoryMethods == 0 && !nameSuffix {
		return nil
	}
	var evidence []entities.EvidenceContribution
	if nameSuffix {
		evidence = append(evidence, entities.EvidenceContribution{Description: "class name ends in Factory", Confidence: 0.5})
	}
	if factoryMethods > 0 {
		evidence = append(evidence, entities.EvidenceContribution{Description: "has create_/make_/new_ methods", Confidence: 0.2 * float64(factoryMethods)})
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternFactory, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: evidence,
	}}
}

func detectBuilder(g classGroup) []entities.DetectedPattern {
	if !hasMethod(g, "build", "Build") {
		return nil
	}
	chainLike := 0
	for _, m := range g.methods {
		if m.Name != "build" && m.Name != "Build" {
			chainLike++
		}
	}
	if chainLike == 0 {
		return nil
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternBuilder, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: []entities.EvidenceContribution{
			{Description: "terminal build() method", Confidence: 0.5},
			{Description: "chainable configuration methods", Confidence: 0.3},
		},
	}}
}

func detectObserver(g classGroup) []entities.DetectedPattern {
	hasSub := hasMethod(g, "subscribe", "Subscribe", "add_observer", "AddObserver")
	hasUnsub := hasMethod(g, "unsubscribe", "Unsubscribe", "remove_observer", "RemoveObserver")
	hasNotify := hasMethod(g, "notify", "Notify", "notify_all", "NotifyAll")
	if !hasNotify || !(hasSub || hasUnsub) {
		return nil
	}
	var evidence []entities.EvidenceContribution
	evidence = append(evidence, entities.EvidenceContribution{Description: "notify method present", Confidence: 0.4})
	if hasSub {
		evidence = append(evidence, entities.EvidenceContribution{Description: "subscribe method present", Confidence: 0.3})
	}
	if hasUnsub {
		evidence = append(evidence, entities.EvidenceContribution{Description: "unsubscribe method present", Confidence: 0.2})
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternObserver, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: evidence,
	}}
}

func detectRepository(g classGroup) []entities.DetectedPattern {
	matched := 0
	for _, m := range g.methods {
		if repositoryVerb.MatchString(m.Name) {
			matched++
		}
	}
	if matched < 3 {
		return nil
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternRepository, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: []entities.EvidenceContribution{
			{Description: "has find/get/save/delete/update/list methods", Confidence: 0.3 * float64(matched)},
		},
	}}
}

func detectService(g classGroup) []entities.DetectedPattern {
	if !strings.HasSuffix(g.class.Name, "Service") {
		return nil
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternService, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: []entities.EvidenceContribution{
			{Description: "class name ends in Service", Confidence: 0.6},
		},
	}}
}

func detectContextManager(g classGroup) []entities.DetectedPattern {
	if !(hasMethod(g, "__enter__") && hasMethod(g, "__exit__")) {
		return nil
	}
	return []entities.DetectedPattern{{
		Kind: entities.PatternContextManager, Name: g.class.Name,
		FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
		Evidence: []entities.EvidenceContribution{
			{Description: "__enter__/__exit__ pair", Confidence: 0.9},
		},
	}}
}

func detectDataclass(g classGroup) []entities.DetectedPattern {
	for _, d := range g.class.Decorators {
		if strings.Contains(d, "dataclass") {
			return []entities.DetectedPattern{{
				Kind: entities.PatternDataclass, Name: g.class.Name,
				FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
				Evidence: []entities.EvidenceContribution{
					{Description: "@dataclass decorator", Confidence: 0.9},
				},
			}}
		}
	}
	return nil
}

func detectProperty(symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	var out []entities.DetectedPattern
	for _, s := range symbols {
		for _, d := range s.Decorators {
			if strings.Contains(d, "property") {
				out = append(out, entities.DetectedPattern{
					Kind: entities.PatternProperty, Name: s.Name,
					FilePath: s.FilePath, StartLine: s.LineStart, EndLine: s.LineEnd,
					Evidence: []entities.EvidenceContribution{
						{Description: "@property decorator", Confidence: 0.8},
					},
				})
			}
		}
	}
	return out
}

func detectAsyncPattern(ctx *entities.ASTContext, symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	var out []entities.DetectedPattern
	for _, s := range symbols {
		if !s.IsAsync {
			continue
		}
		awaits := strings.Contains(s.Body, "await ") || strings.Contains(s.Description, "await")
		conf := 0.6
		if awaits {
			conf = 0.9
		}
		out = append(out, entities.DetectedPattern{
			Kind: entities.PatternAsync, Name: s.Name,
			FilePath: s.FilePath, StartLine: s.LineStart, EndLine: s.LineEnd,
			Evidence: []entities.EvidenceContribution{
				{Description: "declared async", Confidence: conf},
			},
		})
	}
	return out
}

func detectLogging(symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	var out []entities.DetectedPattern
	for _, s := range symbols {
		name := strings.ToLower(s.Name)
		if name == "logger" || name == "log" || strings.Contains(name, "get_logger") || strings.Contains(name, "getlogger") {
			out = append(out, entities.DetectedPattern{
				Kind: entities.PatternLogging, Name: s.Name,
				FilePath: s.FilePath, StartLine: s.LineStart, EndLine: s.LineEnd,
				Evidence: []entities.EvidenceContribution{
					{Description: "module-level logger accessor", Confidence: 0.6},
				},
			})
		}
	}
	return out
}

func detectErrorHandling(symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	var out []entities.DetectedPattern
	for _, s := range symbols {
		if s.SymbolType == entities.ConceptClass && (strings.HasSuffix(s.Name, "Error") || strings.HasSuffix(s.Name, "Exception")) {
			out = append(out, entities.DetectedPattern{
				Kind: entities.PatternErrorHandling, Name: s.Name,
				FilePath: s.FilePath, StartLine: s.LineStart, EndLine: s.LineEnd,
				Evidence: []entities.EvidenceContribution{
					{Description: "custom exception/error class", Confidence: 0.7},
				},
			})
		}
	}
	return out
}

func detectNamingPatterns(symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	counts := map[entities.PatternType]int{}
	examples := map[entities.PatternType][]string{}
	for _, s := range symbols {
		switch {
		case snakeCaseRE.MatchString(s.Name):
			counts[entities.PatternNamingSnakeCase]++
			examples[entities.PatternNamingSnakeCase] = appendCapped(examples[entities.PatternNamingSnakeCase], s.Name)
		case pascalCaseRE.MatchString(s.Name):
			counts[entities.PatternNamingPascalCase]++
			examples[entities.PatternNamingPascalCase] = appendCapped(examples[entities.PatternNamingPascalCase], s.Name)
		case camelCaseRE.MatchString(s.Name):
			counts[entities.PatternNamingCamelCase]++
			examples[entities.PatternNamingCamelCase] = appendCapped(examples[entities.PatternNamingCamelCase], s.Name)
		}
	}
	var out []entities.DetectedPattern
	for kind, n := range counts {
		if n == 0 {
			continue
		}
		out = append(out, entities.DetectedPattern{
			Kind: kind, Name: string(kind),
			Evidence: []entities.EvidenceContribution{
				{Description: "identifier naming convention", Confidence: minF(1.0, 0.1*float64(n))},
			},
		})
	}
	return out
}

func appendCapped(s []string, v string) []string {
	if len(s) >= 5 {
		return s
	}
	return append(s, v)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func detectAntipatterns(classes []classGroup, symbols []entities.ExtractedSymbol, cfg PatternConfig) []entities.DetectedPattern {
	var out []entities.DetectedPattern
	for _, g := range classes {
		if len(g.methods) >= cfg.GodClassMethodCount {
			out = append(out, entities.DetectedPattern{
				Kind: entities.PatternAntiGodClass, Name: g.class.Name,
				FilePath: g.class.FilePath, StartLine: g.class.LineStart, EndLine: g.class.LineEnd,
				Evidence: []entities.EvidenceContribution{
					{Description: "class method count exceeds threshold", Confidence: 0.8},
				},
			})
		}
	}
	for _, s := range symbols {
		if s.SymbolType != entities.ConceptFunction && s.SymbolType != entities.ConceptMethod {
			continue
		}
		loc := s.LineEnd - s.LineStart + 1
		if loc >= cfg.LongMethodLOC {
			out = append(out, entities.DetectedPattern{
				Kind: entities.PatternAntiLongMethod, Name: s.Name,
				FilePath: s.FilePath, StartLine: s.LineStart, EndLine: s.LineEnd,
				Evidence: []entities.EvidenceContribution{
					{Description: "function LOC exceeds threshold", Confidence: 0.8},
				},
			})
		}
	}
	return out
}
