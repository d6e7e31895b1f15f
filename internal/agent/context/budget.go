package context

import (
	"fmt"

	"github.com/vtcode-ai/vtcode/pkg/models"
)

// ThresholdAction is the escalation step the turn loop should take once a
// token-budget threshold is crossed (§4.5 context budgeting thresholds).
type ThresholdAction string

const (
	ActionNone              ThresholdAction = "none"
	ActionMarkCondensable   ThresholdAction = "mark_condensable"
	ActionCompactAggressive ThresholdAction = "compact_aggressive"
	ActionResetProgress     ThresholdAction = "reset_progress"
)

// BudgetThresholds are the percentage-of-budget crossing points that drive
// ActionForUsage. Defaults match the spec: 70/85/90.
type BudgetThresholds struct {
	WarnAtPct    int
	CompactAtPct int
	ResetAtPct   int
}

// DefaultBudgetThresholds returns the spec's default thresholds.
func DefaultBudgetThresholds() BudgetThresholds {
	return BudgetThresholds{WarnAtPct: 70, CompactAtPct: 85, ResetAtPct: 90}
}

// ActionForUsage maps a used/budget char ratio to the highest threshold
// crossed. budgetChars <= 0 always yields ActionNone (nothing to compare
// against).
func ActionForUsage(usedChars, budgetChars int, t BudgetThresholds) ThresholdAction {
	if budgetChars <= 0 {
		return ActionNone
	}
	pct := (usedChars * 100) / budgetChars
	switch {
	case pct >= t.ResetAtPct:
		return ActionResetProgress
	case pct >= t.CompactAtPct:
		return ActionCompactAggressive
	case pct >= t.WarnAtPct:
		return ActionMarkCondensable
	default:
		return ActionNone
	}
}

// condensableMetadataKey marks a tool-role message as eligible to have its
// tool results replaced with their metadata summary on the next aggressive
// compaction pass.
const condensableMetadataKey = "vtcode_condensable"

// MarkCondensable flags tool-role messages older than the last keepTurns
// turns as condensable, without altering their content yet (70% action).
// A "turn" boundary is a tool-role message; keepTurns counts back from the
// end of history.
func MarkCondensable(history []*models.Message, keepTurns int) []*models.Message {
	if keepTurns < 0 {
		keepTurns = 0
	}
	toolTurnsSeen := 0
	out := make([]*models.Message, len(history))
	copy(out, history)
	for i := len(out) - 1; i >= 0; i-- {
		m := out[i]
		if m == nil || m.Role != models.RoleTool || len(m.ToolResults) == 0 {
			continue
		}
		toolTurnsSeen++
		if toolTurnsSeen <= keepTurns {
			continue
		}
		marked := *m
		meta := make(map[string]any, len(m.Metadata)+1)
		for k, v := range m.Metadata {
			meta[k] = v
		}
		meta[condensableMetadataKey] = true
		marked.Metadata = meta
		out[i] = &marked
	}
	return out
}

// CompactAggressive implements the 85% action: every tool-role message
// outside the last keepTurns turns has its tool results replaced by a
// metadata-only summary, while user/assistant text is left untouched.
// Idempotent: a tool result whose content is already the metadata summary
// is left alone (per §9's open question on repeated compaction).
func CompactAggressive(history []*models.Message, keepTurns int) []*models.Message {
	if keepTurns < 0 {
		keepTurns = 0
	}
	toolTurnsSeen := 0
	out := make([]*models.Message, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m == nil || m.Role != models.RoleTool || len(m.ToolResults) == 0 {
			out[i] = m
			continue
		}
		toolTurnsSeen++
		if toolTurnsSeen <= keepTurns {
			out[i] = m
			continue
		}
		out[i] = compactToolMessage(m)
	}
	return out
}

func compactToolMessage(m *models.Message) *models.Message {
	compacted := *m
	compacted.ToolResults = make([]models.ToolResult, len(m.ToolResults))
	for i, tr := range m.ToolResults {
		summary := summarizeForCompaction(tr)
		if tr.LLMContent == summary {
			compacted.ToolResults[i] = tr
			continue
		}
		tr.LLMContent = summary
		tr.Content = summary
		compacted.ToolResults[i] = tr
	}
	return &compacted
}

func summarizeForCompaction(tr models.ToolResult) string {
	if tr.Metadata == nil {
		return tr.LLMContent
	}
	status := "ok"
	if tr.IsError {
		status = "error"
	}
	summary := fmt.Sprintf("[compacted %s result", status)
	if len(tr.Metadata.Files) > 0 {
		summary += fmt.Sprintf("; files=%v", tr.Metadata.Files)
	}
	if tr.Metadata.SavingsTokens > 0 {
		summary += fmt.Sprintf("; originally ~%d tokens", tr.Metadata.UITokens)
	}
	summary += "]"
	return summary
}
