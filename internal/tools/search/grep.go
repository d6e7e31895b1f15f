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

const defaultMaxMatches = 200

// GrepFileTool searches file contents by regex pattern and optional glob,
// shelling out to ripgrep and falling back to grep when rg isn't installed.
type GrepFileTool struct {
	resolver files.Resolver
}

// NewGrepFileTool creates the grep_file tool scoped to cfg.Workspace.
func NewGrepFileTool(cfg Config) *GrepFileTool {
	return &GrepFileTool{resolver: files.Resolver{Root: cfg.Workspace}}
}

func (t *GrepFileTool) Name() string { return "grep_file" }

func (t *GrepFileTool) Description() string {
	return "Search file contents by regex pattern, optionally scoped to a path and filtered by glob. Returns one file:line:match per hit."
}

func (t *GrepFileTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pattern": map[string]interface{}{
				"type":        "string",
				"description": "Regex pattern to search for.",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory or file to search (default: workspace root).",
			},
			"glob": map[string]interface{}{
				"type":        "string",
				"description": "Glob filter for file names (e.g. \"*.go\").",
			},
			"max_matches": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matches to return (default 200).",
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

func (t *GrepFileTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Pattern    string `json:"pattern"`
		Path       string `json:"path"`
		Glob       string `json:"glob"`
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
		max = defaultMaxMatches
	}

	searchPath := strings.TrimSpace(input.Path)
	if searchPath == "" {
		searchPath = "."
	}
	resolved, err := t.resolver.Resolve(searchPath)
	if err != nil {
		return toolError(err.Error()), nil
	}

	result := runRipgrep(ctx, pattern, resolved, input.Glob, max)
	if result == "" {
		result = runGrepFallback(ctx, pattern, resolved, input.Glob)
	}
	if strings.TrimSpace(result) == "" {
		return &agent.ToolResult{Content: "no matches found"}, nil
	}
	return &agent.ToolResult{Content: result}, nil
}

func runRipgrep(ctx context.Context, pattern, path, glob string, max int) string {
	args := []string{"-n", "--no-heading", "--color=never", "-m", strconv.Itoa(max)}
	if glob != "" {
		args = append(args, "-g", glob)
	}
	args = append(args, pattern, path)
	out, _ := exec.CommandContext(ctx, "rg", args...).CombinedOutput()
	return strings.TrimSpace(string(out))
}

func runGrepFallback(ctx context.Context, pattern, path, glob string) string {
	args := []string{"-rn"}
	if glob != "" {
		args = append(args, "--include="+glob)
	}
	args = append(args, pattern, path)
	out, _ := exec.CommandContext(ctx, "grep", args...).CombinedOutput()
	return strings.TrimSpace(string(out))
}
