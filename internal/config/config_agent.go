package config

// AgentConfig controls the turn loop's prompt assembly and dual-channel
// tool-result behavior (§4.5/§4.4 of the agent spec this section
// implements).
type AgentConfig struct {
	// SystemPromptMode selects the tiered system prompt stem: "minimal",
	// "lightweight", "default" (the default), or "specialized".
	SystemPromptMode string `yaml:"system_prompt_mode"`

	// ToolDocumentationMode selects how much of each tool's schema/description
	// reaches the model per turn: "minimal", "progressive", or "full" (the
	// default).
	ToolDocumentationMode string `yaml:"tool_documentation_mode"`

	// EnableSplitToolResults turns on the llm_content/ui_content dual-channel
	// split. Default: true.
	EnableSplitToolResults *bool `yaml:"enable_split_tool_results"`

	// LoopDetectionThreshold is how many consecutive identical tool calls
	// trigger suppression. 0 uses the loop detector's built-in default.
	LoopDetectionThreshold int `yaml:"loop_detection_threshold"`

	// LoopDetectionInteractive, when true, asks for confirmation instead of
	// silently suppressing a detected loop.
	LoopDetectionInteractive bool `yaml:"loop_detection_interactive"`

	// SkipLoopDetection disables loop suppression entirely.
	SkipLoopDetection bool `yaml:"skip_loop_detection"`

	SmallModel SmallModelConfig `yaml:"small_model"`
}

// SmallModelConfig routes cheap, high-volume turn-loop work (e.g. rolling
// summaries) to a smaller model than the main completion model.
type SmallModelConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// PTYConfig controls the PTY session manager's scrollback and output
// handling (§4.8, §6 [pty]).
type PTYConfig struct {
	// ScrollbackLines caps the number of lines kept per session. Default: 10000.
	ScrollbackLines int `yaml:"scrollback_lines"`

	// MaxScrollbackBytes caps total scrollback size per session. Default: 50MB.
	MaxScrollbackBytes int `yaml:"max_scrollback_bytes"`

	// OutputChunkLines is the line count used when presenting a read_pty_session
	// result incrementally. Default: 200.
	OutputChunkLines int `yaml:"output_chunk_lines"`

	// LargeOutputThresholdKB is the per-read size above which output spools to
	// a temp file instead of being returned inline. Default: 5120 (5MB).
	LargeOutputThresholdKB int `yaml:"large_output_threshold_kb"`

	// PreferredShell is the shell binary create_pty_session launches when the
	// caller doesn't specify one. Default: /bin/sh.
	PreferredShell string `yaml:"preferred_shell"`
}
