package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
)

const defaultSearchToolsLimit = 10

// ToolLister is satisfied by *agent.AgenticRuntime: it exposes the
// registered tool names/descriptions search_tools searches over.
type ToolLister interface {
	ListTools() []agent.ToolInfo
}

// SearchToolsTool implements the search_tools built-in (§4.5): it lets the
// model look up tools by keyword instead of having every tool's full
// schema resident in context, and upgrades whatever it returns to full
// documentation for the rest of the run (via the search_tools Summarizer
// family in internal/agent/summarize.go).
type SearchToolsTool struct {
	lister ToolLister
}

// NewSearchToolsTool creates the search_tools tool over lister's registry.
func NewSearchToolsTool(lister ToolLister) *SearchToolsTool {
	return &SearchToolsTool{lister: lister}
}

func (t *SearchToolsTool) Name() string { return "search_tools" }

func (t *SearchToolsTool) Description() string {
	return "Look up available tools by keyword. Matching tools are promoted to full documentation for the rest of this run."
}

func (t *SearchToolsTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keyword": map[string]interface{}{
				"type":        "string",
				"description": "Substring to match against tool names and descriptions.",
			},
			"detail_level": map[string]interface{}{
				"type":        "string",
				"description": "How much detail to return per match.",
				"enum":        []string{"name_only", "with_description", "full_schema"},
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matches to return (default 10).",
				"minimum":     1,
			},
		},
		"required": []string{"keyword"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SearchToolsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Keyword     string `json:"keyword"`
		DetailLevel string `json:"detail_level"`
		Limit       int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	keyword := strings.ToLower(strings.TrimSpace(input.Keyword))
	if keyword == "" {
		return toolError("keyword is required"), nil
	}
	if t.lister == nil {
		return toolError("tool registry unavailable"), nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchToolsLimit
	}
	detail := strings.ToLower(strings.TrimSpace(input.DetailLevel))
	if detail == "" {
		detail = "with_description"
	}

	var lines []string
	for _, info := range t.lister.ListTools() {
		if len(lines) >= limit {
			break
		}
		if !strings.Contains(strings.ToLower(info.Name), keyword) &&
			!strings.Contains(strings.ToLower(info.Description), keyword) {
			continue
		}
		if detail == "name_only" {
			lines = append(lines, info.Name+":")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", info.Name, info.Description))
	}

	if len(lines) == 0 {
		return &agent.ToolResult{Content: fmt.Sprintf("no tools matching %q", input.Keyword)}, nil
	}
	return &agent.ToolResult{Content: strings.Join(lines, "\n")}, nil
}
