package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
	"github.com/vtcode-ai/vtcode/internal/tools/files"
)

const defaultMaxDepth = 6

// ListFilesTool walks a directory and returns one "path:kind" line per
// entry, skipping VCS/dependency noise the same way codebase_index does.
type ListFilesTool struct {
	resolver files.Resolver
}

// NewListFilesTool creates the list_files tool scoped to cfg.Workspace.
func NewListFilesTool(cfg Config) *ListFilesTool {
	return &ListFilesTool{resolver: files.Resolver{Root: cfg.Workspace}}
}

func (t *ListFilesTool) Name() string { return "list_files" }

func (t *ListFilesTool) Description() string {
	return "List files and directories under a path, respecting common ignore patterns (.git, node_modules, vendor, build output)."
}

func (t *ListFilesTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Root directory to list (default: workspace root).",
			},
			"max_depth": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum recursion depth (default 6).",
				"minimum":     1,
			},
		},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *ListFilesTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Path     string `json:"path"`
		MaxDepth int    `json:"max_depth"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	root := strings.TrimSpace(input.Path)
	if root == "" {
		root = "."
	}
	resolved, err := t.resolver.Resolve(root)
	if err != nil {
		return toolError(err.Error()), nil
	}
	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	var lines []string
	walk(resolved, resolved, 0, maxDepth, &lines)
	if len(lines) == 0 {
		return &agent.ToolResult{Content: "no entries found"}, nil
	}
	return &agent.ToolResult{Content: strings.Join(lines, "\n")}, nil
}

func walk(base, path string, depth, maxDepth int, out *[]string) {
	if depth >= maxDepth {
		return
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	for _, e := range entries {
		if shouldSkip(e.Name()) {
			continue
		}
		full := filepath.Join(path, e.Name())
		rel, err := filepath.Rel(base, full)
		if err != nil {
			rel = full
		}
		if e.IsDir() {
			*out = append(*out, fmt.Sprintf("%s:dir", rel))
			walk(base, full, depth+1, maxDepth, out)
		} else {
			*out = append(*out, fmt.Sprintf("%s:file", rel))
		}
	}
}
