// Package skills implements the save_skill/load_skill/list_skills
// built-ins: named, reusable prompt/code artifacts loaded on demand into
// the agent's working context (§6, GLOSSARY "Skill").
package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSkillsDirName is the workspace-relative directory skills live
// under: one subdirectory per skill, holding either SKILL.md (Claude-style)
// or skill.json (legacy).
const DefaultSkillsDirName = "skills"

// Skill is a named, reusable prompt/code artifact.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"-"`
}

// Registry reads and writes skills under <workspace>/skills.
type Registry struct {
	root string
}

// NewRegistry creates a Registry rooted at <workspace>/skills.
func NewRegistry(workspace string) *Registry {
	return &Registry{root: filepath.Join(strings.TrimSpace(workspace), DefaultSkillsDirName)}
}

func (r *Registry) dirFor(name string) string {
	return filepath.Join(r.root, name)
}

// Save writes a skill as SKILL.md under its own subdirectory, creating the
// subdirectory if needed. New skills are always written Claude-style;
// skill.json is read-only legacy support.
func (r *Registry) Save(name, description, content string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("skill name is required")
	}
	dir := r.dirFor(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create skill directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	if description != "" {
		fmt.Fprintf(&b, "%s\n\n", description)
	}
	b.WriteString(content)

	return os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(b.String()), 0o644)
}

// Load reads a skill by name, trying SKILL.md first and falling back to
// the legacy skill.json format.
func (r *Registry) Load(name string) (*Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("skill name is required")
	}
	dir := r.dirFor(name)

	if data, err := os.ReadFile(filepath.Join(dir, "SKILL.md")); err == nil {
		return &Skill{
			Name:        name,
			Description: firstMarkdownParagraph(string(data)),
			Content:     string(data),
		}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, "skill.json"))
	if err != nil {
		return nil, fmt.Errorf("skill %q not found", name)
	}
	var legacy struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Content     string `json:"content"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("parse skill.json: %w", err)
	}
	return &Skill{Name: name, Description: legacy.Description, Content: legacy.Content}, nil
}

// List returns every skill subdirectory's name and description.
func (r *Registry) List() ([]Skill, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Skill
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		skill, err := r.Load(e.Name())
		if err != nil {
			continue
		}
		out = append(out, Skill{Name: skill.Name, Description: skill.Description})
	}
	return out, nil
}

func firstMarkdownParagraph(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
