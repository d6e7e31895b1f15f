package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
	"github.com/vtcode-ai/vtcode/internal/tools/files"
)

const defaultMaxASTMatches = 100

// ASTGrepTool runs structural code search via the ast-grep CLI ("sg") when
// it's on PATH. Without it, it degrades to a literal substring scan over
// the same scope — good enough to locate candidates, not a syntax-aware
// match, and the result says so.
type ASTGrepTool struct {
	resolver files.Resolver
}

// NewASTGrepTool creates the ast_grep_search tool scoped to cfg.Workspace.
func NewASTGrepTool(cfg Config) *ASTGrepTool {
	return &ASTGrepTool{resolver: files.Resolver{Root: cfg.Workspace}}
}

func (t *ASTGrepTool) Name() string { return "ast_grep_search" }

func (t *ASTGrepTool) Description() string {
	return "Search for a structural code pattern (ast-grep meta-variable syntax, e.g. \"func $NAME($$$) { $$$ }\") across a path, filtered by language."
}

func (t *ASTGrepTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pattern": map[string]interface{}{
				"type":        "string",
				"description": "ast-grep pattern, using $NAME/$$$ meta-variables.",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory or file to search (default: workspace root).",
			},
			"lang": map[string]interface{}{
				"type":        "string",
				"description": "Language id ast-grep should parse with (e.g. \"go\", \"ts\", \"python\").",
			},
			"max_matches": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matches to return (default 100).",
				"minimum":     1,
			},
		},
		"required": []string{"pattern"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *ASTGrepTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Pattern    string `json:"pattern"`
		Path       string `json:"path"`
		Lang       string `json:"lang"`
		MaxMatches int    `json:"max_matches"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	pattern := strings.TrimSpace(input.Pattern)
	if pattern == "" {
		return toolError("pattern is required"), nil
	}
	max := input.MaxMatches
	if max <= 0 {
		max = defaultMaxASTMatches
	}
	searchPath := strings.TrimSpace(input.Path)
	if searchPath == "" {
		searchPath = "."
	}
	resolved, err := t.resolver.Resolve(searchPath)
	if err != nil {
		return toolError(err.Error()), nil
	}

	if out, ok := runASTGrepCLI(ctx, pattern, resolved, input.Lang, max); ok {
		if strings.TrimSpace(out) == "" {
			return &agent.ToolResult{Content: "no matches found"}, nil
		}
		return &agent.ToolResult{Content: out}, nil
	}

	out := literalFallback(ctx, resolved, pattern, max)
	if out == "" {
		return &agent.ToolResult{Content: "no matches found (ast-grep not installed; fell back to a literal scan)"}, nil
	}
	return &agent.ToolResult{Content: "ast-grep not installed; literal-scan results:\n" + out}, nil
}

func runASTGrepCLI(ctx context.Context, pattern, path, lang string, max int) (string, bool) {
	if _, err := exec.LookPath("ast-grep"); err != nil {
		if _, err := exec.LookPath("sg"); err != nil {
			return "", false
		}
	}
	bin := "ast-grep"
	if _, err := exec.LookPath(bin); err != nil {
		bin = "sg"
	}
	args := []string{"run", "-p", pattern}
	if lang != "" {
		args = append(args, "-l", lang)
	}
	args = append(args, path)
	out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", true
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > max {
		lines = lines[:max]
	}
	return strings.Join(lines, "\n"), true
}

func literalFallback(ctx context.Context, path, pattern string, max int) string {
	args := []string{"-n", "--no-heading", "--color=never", "-F", "-m", strconv.Itoa(max), pattern, path}
	out, _ := exec.CommandContext(ctx, "rg", args...).CombinedOutput()
	result := strings.TrimSpace(string(out))
	if result != "" {
		return result
	}
	grepArgs := []string{"-rnF", pattern, path}
	out, _ = exec.CommandContext(ctx, "grep", grepArgs...).CombinedOutput()
	return strings.TrimSpace(string(out))
}
