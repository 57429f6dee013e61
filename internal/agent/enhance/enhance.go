// Package enhance is a best-effort source formatter for generated files.
// Formatting failures never surface: the input passes through unmodified.
package enhance

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"
)

// Enhance reformats content per language-appropriate rules. It never fails;
// anything it cannot improve is returned as-is.
func Enhance(content, language string) string {
	switch language {
	case "json":
		return formatJSON(content)
	default:
		return normalizeWhitespace(content)
	}
}

// Lint is a declared extension point; no linters are wired yet.
func Lint(content, language string) (errors, warnings []string) {
	return nil, nil
}

// LanguageForPath infers the formatting language from a file's extension.
func LanguageForPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".css":
		return "css"
	case ".html":
		return "html"
	case ".json":
		return "json"
	default:
		return "typescript"
	}
}

func formatJSON(content string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(content)), "", "  "); err != nil {
		return content
	}
	buf.WriteByte('\n')
	return buf.String()
}

// normalizeWhitespace converts CRLF line endings, strips trailing spaces and
// guarantees a single trailing newline.
func normalizeWhitespace(content string) string {
	if content == "" {
		return content
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := strings.Join(lines, "\n")
	return strings.TrimRight(out, "\n") + "\n"
}
