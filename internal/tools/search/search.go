// Package search implements the codebase-lookup built-ins: grep_file,
// list_files, ast_grep_search, and search_tools. Grounded on
// codebase_tools.go's ripgrep-with-grep-fallback pattern and file-tree
// walker (jholhewres-goclaw).
package search

import (
	"encoding/json"
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
)

// Config configures the search tools against a single workspace root.
type Config struct {
	Workspace string
}

// skipDirs are directories the file-tree walker and grep both ignore by
// default: VCS metadata, dependency trees, and build output.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"__pycache__": true, ".next": true, ".nuxt": true,
	"dist": true, "build": true, ".venv": true,
	"target": true, ".idea": true, ".vscode": true,
}

func shouldSkip(name string) bool {
	if skipDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".") && name != ".github"
}

func toolError(message string) *agent.ToolResult {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
