package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
)

// SaveSkillTool implements save_skill.
type SaveSkillTool struct {
	registry *Registry
}

// NewSaveSkillTool creates the save_skill tool over registry.
func NewSaveSkillTool(registry *Registry) *SaveSkillTool {
	return &SaveSkillTool{registry: registry}
}

func (t *SaveSkillTool) Name() string { return "save_skill" }

func (t *SaveSkillTool) Description() string {
	return "Save a named, reusable skill (prompt/code artifact) for later reuse via load_skill."
}

func (t *SaveSkillTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Unique skill name.",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "One-line summary shown by list_skills.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The skill body: instructions, snippets, or a script.",
			},
		},
		"required": []string{"name", "content"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SaveSkillTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Content     string `json:"content"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if t.registry == nil {
		return toolError("skill registry unavailable"), nil
	}
	if err := t.registry.Save(input.Name, input.Description, input.Content); err != nil {
		return toolError(err.Error()), nil
	}
	return &agent.ToolResult{Content: fmt.Sprintf("saved skill %q", strings.TrimSpace(input.Name))}, nil
}

// LoadSkillTool implements load_skill.
type LoadSkillTool struct {
	registry *Registry
}

// NewLoadSkillTool creates the load_skill tool over registry.
func NewLoadSkillTool(registry *Registry) *LoadSkillTool {
	return &LoadSkillTool{registry: registry}
}

func (t *LoadSkillTool) Name() string { return "load_skill" }

func (t *LoadSkillTool) Description() string {
	return "Load a previously saved skill's full content by name."
}

func (t *LoadSkillTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Skill name to load.",
			},
		},
		"required": []string{"name"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *LoadSkillTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if t.registry == nil {
		return toolError("skill registry unavailable"), nil
	}
	skill, err := t.registry.Load(input.Name)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return &agent.ToolResult{Content: skill.Content}, nil
}

// ListSkillsTool implements list_skills.
type ListSkillsTool struct {
	registry *Registry
}

// NewListSkillsTool creates the list_skills tool over registry.
func NewListSkillsTool(registry *Registry) *ListSkillsTool {
	return &ListSkillsTool{registry: registry}
}

func (t *ListSkillsTool) Name() string { return "list_skills" }

func (t *ListSkillsTool) Description() string {
	return "List every saved skill's name and description."
}

func (t *ListSkillsTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *ListSkillsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_, _ = ctx, params
	if t.registry == nil {
		return toolError("skill registry unavailable"), nil
	}
	list, err := t.registry.List()
	if err != nil {
		return toolError(err.Error()), nil
	}
	if len(list) == 0 {
		return &agent.ToolResult{Content: "no skills saved"}, nil
	}
	var b strings.Builder
	for _, s := range list {
		fmt.Fprintf(&b, "%s: %s\n", s.Name, s.Description)
	}
	return &agent.ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}

func toolError(message string) *agent.ToolResult {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
