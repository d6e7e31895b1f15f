// Package plan implements the update_plan built-in: a step-by-step
// execution plan the agent maintains across turns, persisted at the
// workspace root the same way .progress.md is (grounded on
// None9527-NGOClaw's plan_tool.go, adapted from a home-directory store to
// a workspace-relative one and from zap logging to none, matching this
// repo's other tools).
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPlanFilename is the workspace-root file update_plan persists to.
const DefaultPlanFilename = ".plan.json"

// StepStatus is the execution state of a single plan step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepDone       StepStatus = "done"
	StepError      StepStatus = "error"
	StepSkipped    StepStatus = "skipped"
)

// Step is a single step in an execution plan.
type Step struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Status    StepStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Plan is the full execution plan.
type Plan struct {
	Goal      string    `json:"goal"`
	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func planPath(workspace string) string {
	return filepath.Join(workspace, DefaultPlanFilename)
}

func loadPlan(workspace string) (*Plan, error) {
	data, err := os.ReadFile(planPath(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func savePlan(workspace string, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(planPath(workspace), data, 0o644)
}

// renderPlan produces a checklist-style rendering of the plan for the
// tool's response content.
func renderPlan(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Goal)

	done := 0
	for _, s := range p.Steps {
		marker := "[ ]"
		switch s.Status {
		case StepDone, StepSkipped:
			marker = "[x]"
			done++
		case StepInProgress:
			marker = "[~]"
		case StepError:
			marker = "[!]"
		}
		line := fmt.Sprintf("%s %d. %s", marker, s.ID, s.Title)
		if s.Notes != "" {
			line += fmt.Sprintf(" (%s)", s.Notes)
		}
		fmt.Fprintln(&b, line)
	}
	if len(p.Steps) > 0 {
		fmt.Fprintf(&b, "\n%d/%d complete", done, len(p.Steps))
	}
	return b.String()
}
