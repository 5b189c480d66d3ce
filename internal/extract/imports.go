package extract

import (
	"strings"

	"anamnesis/internal/entities"
	"anamnesis/internal/parser"
)

// ExtractImports walks ctx's tree and returns every import/use statement
// it finds, dispatching on ctx.Language (Python, Go, JavaScript/TypeScript
// and Rust; other languages yield none). CommonJS require() calls are not
// extracted. Grounded on
// original_source's import_extractor.py behavior (module/kind/alias/
// relative-level semantics) and the teacher's per-language node-walk idiom.
func ExtractImports(ctx *entities.ASTContext) []entities.ExtractedImport {
	if ctx == nil || ctx.Root == nil {
		return nil
	}
	switch ctx.Language {
	case "python":
		return extractPythonImports(ctx)
	case "go":
		return extractGoImports(ctx)
	case "javascript", "typescript", "tsx":
		return extractJSImports(ctx)
	case "rust":
		return extractRustImports(ctx)
	default:
		return nil
	}
}

func extractPythonImports(ctx *entities.ASTContext) []entities.ExtractedImport {
	var out []entities.ExtractedImport
	parser.Walk(ctx.Root, func(n *entities.ParsedNode) {
		switch n.RawType {
		case "import_statement":
			// "import os" or "import numpy as np[, pkg2 as p2, ...]"
			for _, clause := range splitTopLevelCommas(strings.TrimPrefix(n.Text, "import")) {
				module, alias := splitAsClause(strings.TrimSpace(clause))
				kind := entities.ImportPlain
				if alias != "" {
					kind = entities.ImportAlias
				}
				out = append(out, entities.ExtractedImport{
					Module:    module,
					Kind:      kind,
					Names:     namesFor(module, alias),
					IsStdlib:  isStdlib("python", module),
					FilePath:  ctx.FilePath,
					StartLine: n.StartLine,
					EndLine:   n.EndLine,
				})
			}
		case "import_from_statement":
			out = append(out, parsePythonFromImport(n, ctx)...)
		}
	})
	return out
}

func parsePythonFromImport(n *entities.ParsedNode, ctx *entities.ASTContext) []entities.ExtractedImport {
	text := strings.TrimPrefix(n.Text, "from")
	parts := strings.SplitN(text, "import", 2)
	if len(parts) != 2 {
		return nil
	}
	moduleRaw := strings.TrimSpace(parts[0])
	namesRaw := strings.TrimSpace(parts[1])

	level := 0
	for len(moduleRaw) > 0 && moduleRaw[0] == '.' {
		level++
		moduleRaw = moduleRaw[1:]
	}
	module := strings.TrimSpace(moduleRaw)

	kind := entities.ImportFrom
	var names []entities.ImportedName
	if namesRaw == "*" {
		kind = entities.ImportStar
	} else {
		namesRaw = strings.Trim(namesRaw, "()")
		for _, part := range splitTopLevelCommas(namesRaw) {
			name, alias := splitAsClause(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			names = append(names, entities.ImportedName{Name: name, Alias: alias})
		}
	}
	if level > 0 {
		kind = entities.ImportRelative
	}

	return []entities.ExtractedImport{{
		Module:        module,
		Names:         names,
		Kind:          kind,
		IsRelative:    level > 0,
		RelativeLevel: level,
		IsStdlib:      level == 0 && isStdlib("python", module),
		FilePath:      ctx.FilePath,
		StartLine:     n.StartLine,
		EndLine:       n.EndLine,
	}}
}

func extractGoImports(ctx *entities.ASTContext) []entities.ExtractedImport {
	var out []entities.ExtractedImport
	parser.Walk(ctx.Root, func(n *entities.ParsedNode) {
		if n.RawType != "import_spec" && n.RawType != "interpreted_string_literal" {
			return
		}
		if n.RawType != "import_spec" {
			return
		}
		path := ""
		alias := ""
		for _, child := range n.Children {
			if child.RawType == "interpreted_string_literal" {
				path = strings.Trim(child.Text, `"`)
			} else if child.RawType == "package_identifier" || child.RawType == "identifier" {
				alias = child.Text
			} else if child.RawType == "dot" {
				alias = "."
			} else if child.RawType == "blank_identifier" {
				alias = "_"
			}
		}
		if path == "" {
			return
		}
		kind := entities.ImportPlain
		if alias != "" {
			kind = entities.ImportAlias
		}
		out = append(out, entities.ExtractedImport{
			Module:    path,
			Names:     namesFor(path, alias),
			Kind:      kind,
			IsStdlib:  isStdlib("go", path),
			FilePath:  ctx.FilePath,
			StartLine: n.StartLine,
			EndLine:   n.EndLine,
		})
	})
	return out
}

func extractJSImports(ctx *entities.ASTContext) []entities.ExtractedImport {
	var out []entities.ExtractedImport
	parser.Walk(ctx.Root, func(n *entities.ParsedNode) {
		if n.RawType != "import_statement" {
			return
		}
		var source string
		for _, child := range n.Children {
			if child.RawType == "string" {
				source = strings.Trim(child.Text, `'"`)
			}
		}
		if source == "" {
			return
		}
		isRelative := strings.HasPrefix(source, ".")
		out = append(out, entities.ExtractedImport{
			Module:     source,
			Kind:       entities.ImportFrom,
			IsRelative: isRelative,
			RelativeLevel: func() int {
				if !isRelative {
					return 0
				}
				return strings.Count(strings.TrimPrefix(source, "./"), "../") + 1
			}(),
			IsStdlib:  !isRelative && isStdlib(ctx.Language, source),
			FilePath:  ctx.FilePath,
			StartLine: n.StartLine,
			EndLine:   n.EndLine,
		})
	})
	return out
}

func extractRustImports(ctx *entities.ASTContext) []entities.ExtractedImport {
	var out []entities.ExtractedImport
	parser.Walk(ctx.Root, func(n *entities.ParsedNode) {
		if n.RawType != "use_declaration" {
			return
		}
		path := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(n.Text, "use"), ";"))
		module := strings.SplitN(path, "::", 2)[0]
		out = append(out, entities.ExtractedImport{
			Module:    module,
			Kind:      entities.ImportPlain,
			IsStdlib:  isStdlib("rust", module),
			FilePath:  ctx.FilePath,
			StartLine: n.StartLine,
			EndLine:   n.EndLine,
		})
	})
	return out
}

// splitAsClause splits "name as alias" into (name, alias); alias is "" if
// there is no "as" clause.
func splitAsClause(s string) (name, alias string) {
	if idx := strings.Index(s, " as "); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+4:])
	}
	return strings.TrimSpace(s), ""
}

// splitTopLevelCommas splits s on commas that are not nested inside
// parentheses.
func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func namesFor(module, alias string) []entities.ImportedName {
	if module == "" {
		return nil
	}
	return []entities.ImportedName{{Name: module, Alias: alias}}
}
