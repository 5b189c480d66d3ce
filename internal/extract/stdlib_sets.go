// Package extract turns a parsed AST (internal/parser) into the
// engine-side shapes of spec §4.2: symbols, imports and design-pattern
// detections.
package extract

// stdlibModules is a per-language set of standard-library module/package
// names used to classify ExtractedImport.IsStdlib. These are deliberately
// partial (top-level, most-common modules only) rather than exhaustive —
// spec §9 accepts "good enough" stdlib classification, not a perfect
// language-version-pinned list, and the Open Questions decision in
// DESIGN.md records this as a fixed, documented table rather than a
// generated one.
var stdlibModules = map[string]map[string]bool{
	"python": setOf(
		"os", "sys", "re", "json", "io", "time", "datetime", "math", "random",
		"collections", "itertools", "functools", "typing", "pathlib", "logging",
		"subprocess", "threading", "asyncio", "socket", "http", "urllib",
		"unittest", "abc", "dataclasses", "enum", "contextlib", "copy", "csv",
		"hashlib", "uuid", "sqlite3", "argparse", "shutil", "tempfile", "glob",
		"struct", "pickle", "base64", "string", "textwrap", "traceback",
		"warnings", "weakref", "queue", "multiprocessing", "xml", "html",
	),
	"go": setOf(
		"fmt", "os", "io", "bufio", "bytes", "strings", "strconv", "sort",
		"time", "context", "errors", "sync", "math", "net", "net/http",
		"encoding/json", "encoding/base64", "regexp", "path", "path/filepath",
		"reflect", "runtime", "testing", "log", "flag", "unicode", "crypto",
		"hash", "container/list", "container/heap", "database/sql",
	),
	"javascript": setOf(
		"fs", "path", "http", "https", "os", "util", "events", "stream",
		"crypto", "url", "querystring", "child_process", "assert", "zlib",
		"buffer", "net", "readline", "timers",
	),
	"typescript": setOf(
		"fs", "path", "http", "https", "os", "util", "events", "stream",
		"crypto", "url", "querystring", "child_process", "assert", "zlib",
	),
	"rust": setOf(
		"std", "core", "alloc", "proc_macro",
	),
	"java": setOf(
		"java.lang", "java.util", "java.io", "java.nio", "java.net",
		"java.time", "java.math", "java.text", "java.security", "java.sql",
	),
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// isStdlib reports whether module is a standard-library module for
// language, checking the top-level package/component of dotted paths
// (e.g. "os.path" → "os", "java.util.List" → "java.util" is checked
// directly, falling back to the first two dotted components for Java).
func isStdlib(language, module string) bool {
	set, ok := stdlibModules[language]
	if !ok || module == "" {
		return false
	}
	if set[module] {
		return true
	}
	top := topLevelComponent(language, module)
	return set[top]
}

func topLevelComponent(language, module string) string {
	switch language {
	case "java":
		return firstNDotted(module, 2)
	default:
		return firstNDotted(module, 1)
	}
}

func firstNDotted(s string, n int) string {
	count := 0
	for i, r := range s {
		if r == '.' || r == '/' {
			count++
			if count == n {
				return s[:i]
			}
		}
	}
	return s
}
