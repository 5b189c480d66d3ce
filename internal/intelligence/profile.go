package intelligence

import (
	"sort"
	"strings"

	"anamnesis/internal/entities"
)

// ProfileOptions controls which optional sections BuildProfile populates.
type ProfileOptions struct {
	IncludeRecentActivity bool
	IncludeWorkContext    bool
	RecentSessionsLimit   int
}

// BuildProfile aggregates the pattern engine's learned patterns into a
// developer-style summary (spec §4.5): preferred patterns by frequency,
// the dominant naming convention, and expertise areas inferred from the
// file paths the most-frequent patterns cluster around.
func BuildProfile(patterns *PatternEngine, opts ProfileOptions, recentSessions []entities.WorkSession, activeSession *entities.WorkSession) entities.DeveloperProfile {
	all := patterns.Patterns()

	sort.Slice(all, func(i, j int) bool { return all[i].Frequency > all[j].Frequency })

	var preferred []string
	namingCounts := map[entities.PatternType]int{}
	expertiseDirs := map[string]int{}

	for _, p := range all {
		if isNamingPattern(p.PatternType) {
			namingCounts[p.PatternType] += p.Frequency
			continue
		}
		if len(preferred) < 10 {
			preferred = append(preferred, p.Name)
		}
		for _, fp := range p.FilePaths {
			expertiseDirs[topLevelDir(fp)] += p.Frequency
		}
	}

	profile := entities.DeveloperProfile{
		PreferredPatterns: preferred,
		NamingConvention:  dominantNaming(namingCounts),
		ExpertiseAreas:    topKeys(expertiseDirs, 5),
	}

	if opts.IncludeRecentActivity {
		limit := opts.RecentSessionsLimit
		if limit <= 0 {
			limit = 10
		}
		if len(recentSessions) > limit {
			recentSessions = recentSessions[:limit]
		}
		profile.RecentActivity = recentSessions
	}
	if opts.IncludeWorkContext {
		profile.CurrentWorkContext = activeSession
	}
	return profile
}

func isNamingPattern(t entities.PatternType) bool {
	switch t {
	case entities.PatternNamingSnakeCase, entities.PatternNamingCamelCase, entities.PatternNamingPascalCase:
		return true
	default:
		return false
	}
}

func dominantNaming(counts map[entities.PatternType]int) string {
	best := entities.PatternType("")
	bestCount := 0
	for t, c := range counts {
		if c > bestCount {
			best, bestCount = t, c
		}
	}
	switch best {
	case entities.PatternNamingSnakeCase:
		return "snake_case"
	case entities.PatternNamingCamelCase:
		return "camelCase"
	case entities.PatternNamingPascalCase:
		return "PascalCase"
	default:
		return "unknown"
	}
}

func topLevelDir(filePath string) string {
	parts := strings.SplitN(filePath, "/", 2)
	if len(parts) == 0 {
		return filePath
	}
	return parts[0]
}

func topKeys(counts map[string]int, limit int) []string {
	type kv struct {
		k string
		v int
	}
	kvs := make([]kv, 0, len(counts))
	for k, v := range counts {
		kvs = append(kvs, kv{k, v})
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].v > kvs[j].v })
	out := make([]string, 0, limit)
	for i, e := range kvs {
		if i >= limit {
			break
		}
		out = append(out, e.k)
	}
	return out
}
