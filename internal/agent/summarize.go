package agent

import (
	"fmt"
	"strings"

	"github.com/vtcode-ai/vtcode/pkg/models"
)

// Summarizer converts a tool's raw (single-channel) result into the
// dual-channel models.ToolResult that gets persisted to history and sent
// back to the model. The set of summarizers is closed: Search, FileRead,
// FileEdit, Shell, and Default. There is no dynamic/plugin registration —
// new tools pick one of these families in SummarizerFor.
type Summarizer func(call models.ToolCall, result *ToolResult) models.ToolResult

// approxCharsPerToken is a rough token estimator used only to size the
// savings_tokens bookkeeping; it does not need to match a provider's
// tokenizer exactly.
const approxCharsPerToken = 4

func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	n := len(s) / approxCharsPerToken
	if n == 0 {
		n = 1
	}
	return n
}

// searchToolNames are the tools whose output is a list of matches/paths:
// the UI channel keeps every hit, the LLM channel keeps a digest.
var searchToolNames = map[string]bool{
	"grep_file":       true,
	"list_files":      true,
	"ast_grep_search": true,
	"search_tools":    true,
}

var fileReadToolNames = map[string]bool{
	"read": true,
}

var fileEditToolNames = map[string]bool{
	"write":       true,
	"edit":        true,
	"apply_patch": true,
}

var shellToolNames = map[string]bool{
	"exec":               true,
	"process":            true,
	"execute_code":       true,
	"create_pty_session": true,
	"send_pty_input":     true,
	"read_pty_session":   true,
}

// SummarizerFor returns the Summarizer family registered for toolName,
// falling back to DefaultSummarizer for anything outside the known
// families (§9: closed variant set plus a default fallback).
func SummarizerFor(toolName string) Summarizer {
	switch {
	case searchToolNames[toolName]:
		return SearchSummarizer
	case fileReadToolNames[toolName]:
		return FileReadSummarizer
	case fileEditToolNames[toolName]:
		return FileEditSummarizer
	case shellToolNames[toolName]:
		return ShellSummarizer
	default:
		return DefaultSummarizer
	}
}

// finishSplit assembles the persisted models.ToolResult from a raw
// executor result plus the llm/ui channel split a Summarizer computed,
// and fills in the token-savings bookkeeping for invariant P5
// (savings_tokens == ui_tokens - llm_tokens).
func finishSplit(call models.ToolCall, result *ToolResult, llmContent, uiContent string, files []string, data map[string]any) models.ToolResult {
	llmTokens := estimateTokens(llmContent)
	uiTokens := estimateTokens(uiContent)

	out := models.ToolResult{
		ToolCallID:  call.ID,
		Content:     uiContent,
		IsError:     result.IsError,
		LLMContent:  llmContent,
		UIContent:   uiContent,
		Attachments: artifactsToAttachments(result.Artifacts),
		Metadata: &models.ToolResultMetadata{
			Files:         files,
			Data:          data,
			LLMTokens:     llmTokens,
			UITokens:      uiTokens,
			SavingsTokens: uiTokens - llmTokens,
		},
	}
	out.FinalizeChannels()
	return out
}

// DefaultSummarizer is the fallback: the LLM and UI channels are the same
// content, so savings_tokens is zero. This is also what every summarizer
// degenerates to when enable_split_tool_results is off (applySplitPolicy).
func DefaultSummarizer(call models.ToolCall, result *ToolResult) models.ToolResult {
	content := ""
	if result != nil {
		content = result.Content
	}
	return finishSplit(call, result, content, content, nil, nil)
}

// SearchSummarizer handles grep_file/list_files/ast_grep_search/search_tools:
// the UI channel is the full match list, the LLM channel is a short digest
// (match count, file count, a handful of sample lines) — typically ~95%
// smaller than the UI channel for a broad search.
func SearchSummarizer(call models.ToolCall, result *ToolResult) models.ToolResult {
	ui := result.Content
	lines := splitNonEmptyLines(ui)
	files := uniqueLeadingPaths(lines)

	const sampleLines = 5
	sample := lines
	if len(sample) > sampleLines {
		sample = sample[:sampleLines]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es) across %d file(s)", len(lines), len(files))
	if len(sample) > 0 {
		b.WriteString(":\n")
		b.WriteString(strings.Join(sample, "\n"))
		if len(lines) > len(sample) {
			fmt.Fprintf(&b, "\n... %d more", len(lines)-len(sample))
		}
	}

	data := map[string]any{"match_count": len(lines), "file_count": len(files)}
	if call.Name == "search_tools" {
		data["tools"] = toolNamesFromLines(lines)
	}
	return finishSplit(call, result, b.String(), ui, files, data)
}

// toolNamesFromLines pulls the tool name off each "name: description" line
// search_tools emits, so applyToolUpgrades can promote those tools to full
// documentation for the rest of the run.
func toolNamesFromLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		idx := strings.Index(l, ":")
		if idx <= 0 {
			continue
		}
		out = append(out, strings.TrimSpace(l[:idx]))
	}
	return out
}

// FileReadSummarizer handles the read tool: the UI channel is the full
// file content, the LLM channel is a leading excerpt plus a note about
// how much was trimmed — typically ~55% smaller for large files, a no-op
// split for small ones.
func FileReadSummarizer(call models.ToolCall, result *ToolResult) models.ToolResult {
	ui := result.Content
	const previewRatio = 0.45
	previewLen := int(float64(len(ui)) * previewRatio)
	if previewLen >= len(ui) || previewLen <= 0 {
		return finishSplit(call, result, ui, ui, nil, nil)
	}

	llm := ui[:previewLen] + fmt.Sprintf("\n... [%d more bytes omitted, see ui_content for the full read]", len(ui)-previewLen)
	return finishSplit(call, result, llm, ui, nil, map[string]any{"preview_bytes": previewLen, "total_bytes": len(ui)})
}

// FileEditSummarizer handles write/edit/apply_patch: the UI channel is the
// full diff/confirmation payload, the LLM channel is a one-line summary
// naming the files touched — typically ~75% smaller.
func FileEditSummarizer(call models.ToolCall, result *ToolResult) models.ToolResult {
	ui := result.Content
	files := extractPathHints(ui)

	llm := fmt.Sprintf("edit applied (%d byte diff)", len(ui))
	if len(files) > 0 {
		llm = fmt.Sprintf("edited %s (%d byte diff)", strings.Join(files, ", "), len(ui))
	}
	return finishSplit(call, result, llm, ui, files, nil)
}

// ShellSummarizer handles exec/process/execute_code and the PTY tools: the
// UI channel is the full stdout/stderr, the LLM channel keeps the tail
// (where errors and final status usually are) — typically ~85% smaller
// for chatty commands.
func ShellSummarizer(call models.ToolCall, result *ToolResult) models.ToolResult {
	ui := result.Content
	lines := splitNonEmptyLines(ui)

	const tailLines = 20
	tail := lines
	dropped := 0
	if len(lines) > tailLines {
		dropped = len(lines) - tailLines
		tail = lines[len(lines)-tailLines:]
	}

	llm := strings.Join(tail, "\n")
	if dropped > 0 {
		llm = fmt.Sprintf("[%d earlier line(s) omitted]\n%s", dropped, llm)
	}
	return finishSplit(call, result, llm, ui, nil, map[string]any{"total_lines": len(lines)})
}

func splitNonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// uniqueLeadingPaths pulls the file-path-looking prefix (before the first
// ':') off each line, the shape rg/grep-style tools emit.
func uniqueLeadingPaths(lines []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lines {
		idx := strings.Index(l, ":")
		if idx <= 0 {
			continue
		}
		path := l[:idx]
		if !strings.Contains(path, "/") && !strings.Contains(path, ".") {
			continue
		}
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	return out
}

// extractPathHints scans a diff/patch-shaped payload for "+++ "/"--- "
// headers or a leading "path: " marker, the conventions the file tools in
// internal/tools/files emit.
func extractPathHints(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		var path string
		switch {
		case strings.HasPrefix(l, "+++ "):
			path = strings.TrimPrefix(l, "+++ ")
		case strings.HasPrefix(l, "--- "):
			path = strings.TrimPrefix(l, "--- ")
		case strings.HasPrefix(l, "\"path\""):
			continue
		default:
			continue
		}
		path = strings.TrimPrefix(path, "a/")
		path = strings.TrimPrefix(path, "b/")
		if path == "" || path == "/dev/null" || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}
