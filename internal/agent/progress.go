package agent

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultProgressFilename is the standard filename for the context-reset
// progress note (§4.5/§7: written when usage crosses the reset-at-90%
// threshold, read back at the start of the next turn after history is
// cleared). Mirrors IDENTITY.md's workspace-root, plain-markdown convention
// (see ParseIdentityMarkdown).
const DefaultProgressFilename = ".progress.md"

// ProgressNote is the structured content of .progress.md: what's done, what's
// in flight, and what to do next, written in the agent's own words just
// before a context reset discards the turn history that produced it.
type ProgressNote struct {
	Completed   []string
	CurrentWork []string
	NextAction  []string
}

// Empty reports whether the note has nothing worth persisting.
func (p *ProgressNote) Empty() bool {
	return p == nil || (len(p.Completed) == 0 && len(p.CurrentWork) == 0 && len(p.NextAction) == 0)
}

// RenderProgressMarkdown formats a ProgressNote as the three-section
// markdown file read back into the next turn's context.
func RenderProgressMarkdown(note *ProgressNote) string {
	var b strings.Builder
	writeSection := func(title string, items []string) {
		b.WriteString("## ")
		b.WriteString(title)
		b.WriteString("\n")
		if len(items) == 0 {
			b.WriteString("(none)\n")
		}
		for _, item := range items {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	writeSection("Completed", note.Completed)
	writeSection("Current Work", note.CurrentWork)
	writeSection("Next Action", note.NextAction)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ParseProgressMarkdown parses the three-section format RenderProgressMarkdown
// produces. Unrecognized headings are ignored rather than erroring, so a
// hand-edited .progress.md still loads.
func ParseProgressMarkdown(content string) *ProgressNote {
	note := &ProgressNote{}
	var current *[]string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			switch strings.ToLower(strings.TrimPrefix(trimmed, "## ")) {
			case "completed":
				current = &note.Completed
			case "current work":
				current = &note.CurrentWork
			case "next action":
				current = &note.NextAction
			default:
				current = nil
			}
		case strings.HasPrefix(trimmed, "- "):
			item := strings.TrimPrefix(trimmed, "- ")
			if current != nil && item != "(none)" {
				*current = append(*current, item)
			}
		}
	}
	return note
}

// WriteProgressFile writes note to <root>/.progress.md, overwriting any
// existing file.
func WriteProgressFile(root string, note *ProgressNote) error {
	path := filepath.Join(root, DefaultProgressFilename)
	return os.WriteFile(path, []byte(RenderProgressMarkdown(note)), 0o644)
}

// ReadProgressFile reads and parses <root>/.progress.md. Returns nil, nil if
// the file doesn't exist (no progress note carried over).
func ReadProgressFile(root string) (*ProgressNote, error) {
	path := filepath.Join(root, DefaultProgressFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ParseProgressMarkdown(string(data)), nil
}
