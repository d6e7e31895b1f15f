package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vtcode-ai/vtcode/internal/agent"
)

// UpdatePlanTool implements update_plan: create or update the agent's
// step-by-step execution plan, persisted at the workspace root so it
// survives across turns within a session.
type UpdatePlanTool struct {
	mu        sync.Mutex
	workspace string
}

// NewUpdatePlanTool creates the update_plan tool rooted at workspace.
func NewUpdatePlanTool(workspace string) *UpdatePlanTool {
	return &UpdatePlanTool{workspace: workspace}
}

func (t *UpdatePlanTool) Name() string { return "update_plan" }

func (t *UpdatePlanTool) Description() string {
	return "Create or update the agent's step-by-step execution plan. " +
		"Use action=\"create\" with goal and steps to start a new plan; " +
		"action=\"update\" with step_id and status to record progress."
}

func (t *UpdatePlanTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"description": "\"create\" to start a new plan, \"update\" to change a step's status.",
				"enum":        []string{"create", "update"},
			},
			"goal": map[string]interface{}{
				"type":        "string",
				"description": "Goal of the plan (required for create).",
			},
			"steps": map[string]interface{}{
				"type":        "array",
				"description": "Step titles in order (required for create).",
				"items":       map[string]interface{}{"type": "string"},
			},
			"step_id": map[string]interface{}{
				"type":        "integer",
				"description": "1-indexed step to update (required for update).",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"description": "New status for the step (required for update).",
				"enum":        []string{"pending", "in_progress", "done", "error", "skipped"},
			},
			"notes": map[string]interface{}{
				"type":        "string",
				"description": "Optional notes attached to the step update.",
			},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *UpdatePlanTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Action string   `json:"action"`
		Goal   string   `json:"goal"`
		Steps  []string `json:"steps"`
		StepID int      `json:"step_id"`
		Status string   `json:"status"`
		Notes  string   `json:"notes"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case "create":
		return t.create(input.Goal, input.Steps)
	case "update":
		return t.update(input.StepID, input.Status, input.Notes)
	default:
		return toolError("action must be \"create\" or \"update\""), nil
	}
}

func (t *UpdatePlanTool) create(goal string, steps []string) (*agent.ToolResult, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return toolError("goal is required for create"), nil
	}
	if len(steps) == 0 {
		return toolError("steps is required for create"), nil
	}

	now := time.Now()
	p := &Plan{Goal: goal, CreatedAt: now, UpdatedAt: now}
	for i, title := range steps {
		p.Steps = append(p.Steps, Step{ID: i + 1, Title: title, Status: StepPending, UpdatedAt: now})
	}
	if err := savePlan(t.workspace, p); err != nil {
		return toolError(err.Error()), nil
	}
	return &agent.ToolResult{Content: renderPlan(p)}, nil
}

func (t *UpdatePlanTool) update(stepID int, status, notes string) (*agent.ToolResult, error) {
	if stepID < 1 {
		return toolError("step_id (1-indexed) is required"), nil
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return toolError("status is required"), nil
	}

	p, err := loadPlan(t.workspace)
	if err != nil || p == nil {
		return toolError("no active plan; use action=\"create\" first"), nil
	}
	idx := stepID - 1
	if idx < 0 || idx >= len(p.Steps) {
		return toolError(fmt.Sprintf("step_id %d out of range (1-%d)", stepID, len(p.Steps))), nil
	}

	p.Steps[idx].Status = StepStatus(status)
	p.Steps[idx].UpdatedAt = time.Now()
	if notes != "" {
		p.Steps[idx].Notes = notes
	}
	p.UpdatedAt = time.Now()

	if err := savePlan(t.workspace, p); err != nil {
		return toolError(err.Error()), nil
	}
	return &agent.ToolResult{Content: renderPlan(p)}, nil
}

func toolError(message string) *agent.ToolResult {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
