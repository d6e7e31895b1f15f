package agent

import (
	"encoding/json"
	"fmt"

	"github.com/vtcode-ai/vtcode/pkg/models"
)

// SystemPromptMode selects how much ambient guidance is prepended to the
// caller-supplied system prompt before each completion request (§4.5 tiered
// system prompt). Each level is a fixed stem; levels are never silently
// concatenated into one another.
type SystemPromptMode string

const (
	SystemPromptMinimal     SystemPromptMode = "minimal"
	SystemPromptLightweight SystemPromptMode = "lightweight"
	SystemPromptDefault     SystemPromptMode = "default"
	SystemPromptSpecialized SystemPromptMode = "specialized"
)

var systemPromptStems = map[SystemPromptMode]string{
	SystemPromptMinimal: "You are a coding agent. Use the available tools to satisfy the request.",
	SystemPromptLightweight: "You are a coding agent operating on a real codebase.\n" +
		"Prefer reading before writing, and keep tool calls focused.",
	SystemPromptDefault: "You are a coding agent operating on a real codebase.\n" +
		"Read before you write. Make the smallest change that satisfies the request.\n" +
		"Explain tool results to the user in plain language; the raw output is for you, not them.",
	SystemPromptSpecialized: "You are a coding agent operating on a real codebase, configured for a\n" +
		"specialized workflow. Follow any workflow-specific instructions below over\n" +
		"these defaults where they conflict. Read before you write. Make the smallest\n" +
		"change that satisfies the request.",
}

// BuildSystemPrompt returns the prompt for mode, with base appended as the
// caller's request-specific instructions. An unrecognized mode falls back to
// SystemPromptDefault. base is appended verbatim after a blank line; it is
// never merged into the stem text itself.
func BuildSystemPrompt(mode SystemPromptMode, base string) string {
	stem, ok := systemPromptStems[mode]
	if !ok {
		stem = systemPromptStems[SystemPromptDefault]
	}
	if base == "" {
		return stem
	}
	return stem + "\n\n" + base
}

// ToolDocLevel selects how much of a tool's documentation is exposed to the
// model in a given turn (§4.5 progressive tool documentation). Full detail
// costs context; most turns don't need it for most tools.
type ToolDocLevel string

const (
	// ToolDocMinimal exposes only the tool name, with no description or
	// parameter schema. Used for tools outside the model's likely next move.
	ToolDocMinimal ToolDocLevel = "minimal"

	// ToolDocProgressive exposes name and description but an elided schema,
	// trading exactness for brevity.
	ToolDocProgressive ToolDocLevel = "progressive"

	// ToolDocFull exposes the tool's complete description and schema, as
	// registered.
	ToolDocFull ToolDocLevel = "full"
)

// leveledTool wraps a Tool, overriding Description/Schema to match level
// while keeping Name/Execute pass-through. It satisfies the Tool interface so
// it can be substituted anywhere AsLLMTools() results are used, regardless of
// how an individual LLM provider client serializes CompletionRequest.Tools.
type leveledTool struct {
	Tool
	level ToolDocLevel
}

func (t leveledTool) Description() string {
	switch t.level {
	case ToolDocMinimal:
		return ""
	case ToolDocProgressive:
		full := t.Tool.Description()
		if len(full) > progressiveDescriptionChars {
			return full[:progressiveDescriptionChars] + "..."
		}
		return full
	default:
		return t.Tool.Description()
	}
}

const progressiveDescriptionChars = 160

func (t leveledTool) Schema() json.RawMessage {
	switch t.level {
	case ToolDocMinimal:
		return json.RawMessage(`{"type":"object"}`)
	case ToolDocProgressive:
		return elideSchemaDescriptions(t.Tool.Schema())
	default:
		return t.Tool.Schema()
	}
}

// elideSchemaDescriptions strips per-property "description" fields from a
// JSON Schema object, keeping types and required-ness intact. Falls back to
// the original schema unmodified if it isn't a JSON object (defensive only;
// every registered tool's Schema() is expected to return one).
func elideSchemaDescriptions(schema json.RawMessage) json.RawMessage {
	var doc map[string]any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return schema
	}
	stripDescriptions(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		return schema
	}
	return out
}

func stripDescriptions(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	delete(m, "description")
	for _, nested := range m {
		switch n := nested.(type) {
		case map[string]any:
			stripDescriptions(n)
		case []any:
			for _, item := range n {
				stripDescriptions(item)
			}
		}
	}
}

// ApplyToolDocLevel wraps tools at the given default level, except names in
// full (e.g. the tool the model just asked search_tools about), which always
// get ToolDocFull regardless of defaultLevel. A nil/empty full set applies
// defaultLevel uniformly.
func ApplyToolDocLevel(tools []Tool, defaultLevel ToolDocLevel, full map[string]bool) []Tool {
	if defaultLevel == ToolDocFull || defaultLevel == "" {
		return tools
	}
	out := make([]Tool, len(tools))
	for i, t := range tools {
		level := defaultLevel
		if full[t.Name()] {
			level = ToolDocFull
		}
		out[i] = leveledTool{Tool: t, level: level}
	}
	return out
}

// describeToolDocLevel renders a one-line summary used by the search_tools
// built-in to tell the model which tools it can ask to see in full.
func describeToolDocLevel(level ToolDocLevel, name string) string {
	return fmt.Sprintf("%s (%s detail)", name, level)
}

// searchToolsToolName is the built-in that lets the model request full
// documentation for specific tools named in its result (§4.5's progressive
// tool-documentation levels upgrade path).
const searchToolsToolName = "search_tools"

// applyToolUpgrades reads the tool names a search_tools call surfaced out of
// its result metadata and marks them in state.UpgradedTools so the next
// streamPhase call sends them at ToolDocFull regardless of the run's default
// level.
func applyToolUpgrades(state *LoopState, res models.ToolResult) {
	if state.UpgradedTools == nil || res.Metadata == nil {
		return
	}
	raw, ok := res.Metadata.Data["tools"]
	if !ok {
		return
	}
	names, ok := raw.([]string)
	if !ok {
		if anySlice, ok := raw.([]any); ok {
			for _, v := range anySlice {
				if name, ok := v.(string); ok {
					state.UpgradedTools[name] = true
				}
			}
		}
		return
	}
	for _, name := range names {
		state.UpgradedTools[name] = true
	}
}
