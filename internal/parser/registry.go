// Package parser implements the tree-sitter substrate (spec §4.1): a
// language registry, a fallible-construction wrapper around tree-sitter
// parsers, the ParsedNode conversion, S-expression query execution and
// traversal utilities. Grounded on the teacher's
// internal/world/ast_treesitter.go node-walk idiom and original_source's
// LANGUAGE_MAP aliasing table, which resolves spec §9's canonical
// language-resolution open question.
package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarFor returns the tree-sitter Language for a canonical language name,
// or nil if the registry has no grammar wired for it (the language may
// still be "supported" for naming/extension purposes — spec §4.2 requires
// the generic/no-symbol extraction path to accept any supported language).
func grammarFor(canonical string) *sitter.Language {
	switch canonical {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "tsx":
		return tsx.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "c":
		return c.GetLanguage()
	case "cpp":
		return cpp.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	case "ruby":
		return ruby.GetLanguage()
	case "php":
		return php.GetLanguage()
	case "html":
		return html.GetLanguage()
	default:
		return nil
	}
}

// canonicalAliases maps every name a caller might use to its canonical
// registry name, grounded on original_source's LANGUAGE_MAP.
var canonicalAliases = map[string]string{
	"py":         "python",
	"python3":    "python",
	"js":         "javascript",
	"jsx":        "javascript", // JSX uses the JavaScript grammar
	"mjs":        "javascript",
	"cjs":        "javascript",
	"ts":         "typescript",
	"tsx":        "tsx", // distinct grammar from typescript, per spec §4.1
	"rs":         "rust",
	"golang":     "go",
	"c++":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"hpp":        "cpp",
	"h":          "c",
	"cs":         "csharp",
	"rb":         "ruby",
	"kt":         "kotlin",
	"kts":        "kotlin",
	"sh":         "bash",
	"shell":      "bash", // shell/bash unified, per spec §4.1
	"zsh":        "bash",
	"yml":        "yaml",
	"md":         "markdown",
}

// supportedLanguages is the registry's ~30 canonical language names (spec
// §4.1). Not every name has a grammar wired via grammarFor — the rest
// degrade to the generic extraction path per spec §4.2.
var supportedLanguages = []string{
	"go", "python", "javascript", "typescript", "tsx", "rust", "java", "c",
	"cpp", "csharp", "ruby", "php", "swift", "kotlin", "scala", "html",
	"css", "json", "yaml", "toml", "markdown", "bash", "sql", "lua", "r",
	"julia", "elixir", "erlang", "haskell", "ocaml", "zig", "nim",
}

// extensionMap maps a file extension (without the dot) to its canonical
// language name.
var extensionMap = map[string]string{
	"go": "go", "py": "python", "pyi": "python",
	"js": "javascript", "jsx": "javascript", "mjs": "javascript", "cjs": "javascript",
	"ts": "typescript", "tsx": "tsx",
	"rs": "rust", "java": "java",
	"c": "c", "h": "c",
	"cpp": "cpp", "cc": "cpp", "cxx": "cpp", "hpp": "cpp", "hxx": "cpp",
	"cs": "csharp", "rb": "ruby", "php": "php", "swift": "swift",
	"kt": "kotlin", "kts": "kotlin", "scala": "scala",
	"html": "html", "htm": "html", "css": "css",
	"json": "json", "yaml": "yaml", "yml": "yaml", "toml": "toml",
	"md": "markdown", "markdown": "markdown",
	"sh": "bash", "bash": "bash", "zsh": "bash",
	"sql": "sql", "lua": "lua", "r": "r", "jl": "julia",
	"ex": "elixir", "exs": "elixir", "erl": "erlang",
	"hs": "haskell", "ml": "ocaml", "zig": "zig", "nim": "nim",
}

// Canonicalize resolves an arbitrary language name or alias to a canonical
// registry name. Unknown names are returned lower-cased, unchanged.
func Canonicalize(name string) string {
	lname := strings.ToLower(name)
	if canon, ok := canonicalAliases[lname]; ok {
		return canon
	}
	return lname
}

// Supports reports whether name (after alias resolution) is one of the
// registry's ~30 known language names.
func Supports(name string) bool {
	canon := Canonicalize(name)
	for _, l := range supportedLanguages {
		if l == canon {
			return true
		}
	}
	return false
}

// ListSupported returns every canonical language name the registry knows.
func ListSupported() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// DetectLanguage maps a file path to a canonical language name via its
// extension, or "" if unrecognized.
func DetectLanguage(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return ""
	}
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}
	return ""
}

// ExtensionsFor returns every extension mapped to a canonical language name.
func ExtensionsFor(canonicalLanguage string) []string {
	var out []string
	for ext, lang := range extensionMap {
		if lang == canonicalLanguage {
			out = append(out, ext)
		}
	}
	return out
}

// hasGrammar reports whether grammarFor has a real tree-sitter binding for
// the canonical language name.
func hasGrammar(canonical string) bool {
	return grammarFor(canonical) != nil
}
