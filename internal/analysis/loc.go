package analysis

import (
	"strings"

	"anamnesis/internal/entities"
)

// commentPrefixes is a per-language line-comment prefix table used for LOC
// classification (spec §4.3: "comment classification is language-dependent
// — line-prefix or block-span").
var commentPrefixes = map[string][]string{
	"python":     {"#"},
	"go":         {"//"},
	"javascript": {"//"},
	"typescript": {"//"},
	"tsx":        {"//"},
	"rust":       {"//"},
	"java":       {"//"},
	"c":          {"//"},
	"cpp":        {"//"},
	"ruby":       {"#"},
	"bash":       {"#"},
	"sql":        {"--"},
	"lua":        {"--"},
}

type blockSpan struct{ start, end string }

var blockCommentSpans = map[string]blockSpan{
	"python":     {`"""`, `"""`},
	"go":         {"/*", "*/"},
	"javascript": {"/*", "*/"},
	"typescript": {"/*", "*/"},
	"tsx":        {"/*", "*/"},
	"rust":       {"/*", "*/"},
	"java":       {"/*", "*/"},
	"c":          {"/*", "*/"},
	"cpp":        {"/*", "*/"},
}

// ClassifyLOC classifies each raw line in lines into code/comment/blank,
// tracking block-comment state across lines.
func ClassifyLOC(lines []string, language string) entities.LOCBreakdown {
	prefixes := commentPrefixes[language]
	span, hasBlock := blockCommentSpans[language]

	result := entities.LOCBreakdown{Total: len(lines)}
	inBlock := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			result.Blanks++
		case inBlock:
			result.Comments++
			if hasBlock && strings.Contains(line, span.end) {
				inBlock = false
			}
		case hasBlock && strings.HasPrefix(line, span.start):
			result.Comments++
			if !strings.Contains(line[len(span.start):], span.end) {
				inBlock = true
			}
		case isCommentLine(line, prefixes):
			result.Comments++
		default:
			result.Code++
		}
	}
	return result
}

func isCommentLine(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
