package agent

import "github.com/vtcode-ai/vtcode/pkg/models"

// ValidationReport is the result of validate_history_invariants(): the set of
// tool calls with no matching output and the set of tool outputs with no
// preceding call, by ID.
type ValidationReport struct {
	MissingOutputs []string
	OrphanOutputs  []string
}

// OK reports whether the history satisfies I1/I2 with no repairs needed.
func (r ValidationReport) OK() bool {
	return len(r.MissingOutputs) == 0 && len(r.OrphanOutputs) == 0
}

// validateHistoryInvariants walks history once and reports any call without a
// later matching output (I1) and any output whose call_id has no preceding
// call (I2). It does not mutate history.
func validateHistoryInvariants(history []*models.Message) ValidationReport {
	pending := map[string]bool{}
	order := make([]string, 0)
	var orphans []string

	for _, msg := range history {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case models.RoleAssistant:
			for _, call := range msg.ToolCalls {
				if call.ID == "" {
					continue
				}
				pending[call.ID] = true
				order = append(order, call.ID)
			}
		case models.RoleTool:
			for _, result := range msg.ToolResults {
				if result.ToolCallID == "" || !pending[result.ToolCallID] {
					orphans = append(orphans, result.ToolCallID)
					continue
				}
				delete(pending, result.ToolCallID)
				order = removeID(order, result.ToolCallID)
			}
		}
	}

	return ValidationReport{MissingOutputs: order, OrphanOutputs: orphans}
}

// removeOrphanOutputs drops any ToolOutput whose call_id has no preceding
// ToolCall (I2). Equivalent to spec's remove_orphan_outputs().
func removeOrphanOutputs(history []*models.Message) []*models.Message {
	pending := map[string]bool{}
	repaired := make([]*models.Message, 0, len(history))

	for _, msg := range history {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case models.RoleAssistant:
			for _, call := range msg.ToolCalls {
				if call.ID != "" {
					pending[call.ID] = true
				}
			}
			repaired = append(repaired, msg)
		case models.RoleTool:
			kept := make([]models.ToolResult, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				if result.ToolCallID != "" && pending[result.ToolCallID] {
					delete(pending, result.ToolCallID)
					kept = append(kept, result)
				}
			}
			if len(kept) == 0 {
				continue
			}
			copied := *msg
			copied.ToolResults = kept
			repaired = append(repaired, &copied)
		default:
			repaired = append(repaired, msg)
		}
	}

	return repaired
}

// ensureCallOutputsPresent inserts a synthetic Canceled ToolResult immediately
// after every ToolCall left in calls_awaiting_output at end-of-history (I1).
// This is the recovery half of the spec's ensure_call_outputs_present().
func ensureCallOutputsPresent(history []*models.Message) []*models.Message {
	report := validateHistoryInvariants(removeOrphanOutputs(history))
	if len(report.MissingOutputs) == 0 {
		return history
	}

	missing := map[string]bool{}
	for _, id := range report.MissingOutputs {
		missing[id] = true
	}

	repaired := make([]*models.Message, 0, len(history)+len(missing))
	for _, msg := range history {
		repaired = append(repaired, msg)
		if msg == nil || msg.Role != models.RoleAssistant {
			continue
		}
		var synthesized []models.ToolResult
		for _, call := range msg.ToolCalls {
			if call.ID != "" && missing[call.ID] {
				res := models.ToolResult{
					ToolCallID: call.ID,
					Content:    "tool canceled (no output recorded)",
					IsError:    true,
					Status:     models.StatusCanceled,
				}
				res.FinalizeChannels()
				synthesized = append(synthesized, res)
			}
		}
		if len(synthesized) > 0 {
			repaired = append(repaired, &models.Message{
				Role:        models.RoleTool,
				ToolResults: synthesized,
			})
		}
	}
	return repaired
}

// normalizeHistory runs remove_orphan_outputs() then ensure_call_outputs_present()
// in sequence, matching the spec's normalize(). It is idempotent: running it
// twice produces the same result as running it once, since the second pass
// finds no orphans and no missing outputs to repair.
func normalizeHistory(history []*models.Message) []*models.Message {
	return ensureCallOutputsPresent(removeOrphanOutputs(history))
}

// repairTranscript is kept as the package-internal entry point used by the
// runtime and loop before rendering context; it is normalizeHistory under a
// name matching the rest of this file's history.
func repairTranscript(history []*models.Message) []*models.Message {
	return normalizeHistory(history)
}

func removeID(ids []string, target string) []string {
	for i, id := range ids {
		if id == target {
			copy(ids[i:], ids[i+1:])
			return ids[:len(ids)-1]
		}
	}
	return ids
}
