package models

import (
	"encoding/json"
	"time"
)

// ChannelType represents a messaging platform.
type ChannelType string

const (
	ChannelTelegram ChannelType = "telegram"
	ChannelDiscord  ChannelType = "discord"
	ChannelSlack    ChannelType = "slack"
	ChannelAPI      ChannelType = "api"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelSignal   ChannelType = "signal"
	ChannelIMessage ChannelType = "imessage"
	ChannelMatrix   ChannelType = "matrix"
	ChannelTeams    ChannelType = "teams"
	ChannelEmail    ChannelType = "email"
)

// Direction indicates if a message is inbound or outbound.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Role indicates the message author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is the unified message format across all channels.
type Message struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	BranchID    string         `json:"branch_id,omitempty"`
	SequenceNum int64          `json:"sequence_num,omitempty"`
	Channel     ChannelType    `json:"channel"`
	ChannelID   string         `json:"channel_id"` // Platform-specific message ID
	Direction   Direction      `json:"direction"`
	Role        Role           `json:"role"`
	Content     string         `json:"content"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	ToolCalls   []ToolCall     `json:"tool_calls,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Attachment represents a file or media attachment.
type Attachment struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // image, audio, video, document
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// ToolCall represents an LLM's request to execute a tool.
type ToolCall struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
}

// OutputStatus is the outcome of a tool execution, distinct from the
// boolean IsError flag: it separates an ordinary tool failure from a
// canceled or timed-out execution so callers (loop detector, transcript
// repair, job store) don't have to encode that distinction in Content.
type OutputStatus string

const (
	StatusSuccess  OutputStatus = "success"
	StatusFailed   OutputStatus = "failed"
	StatusCanceled OutputStatus = "canceled"
	StatusTimedOut OutputStatus = "timed_out"
)

// ToolResultMetadata carries the bookkeeping a Summarizer produces when it
// splits a tool result into an LLM channel and a UI channel: which files
// were touched, any structured data the UI wants to render directly, and
// the token accounting behind the split (see Summarizer in
// internal/agent/summarize.go and invariant P5: SavingsTokens == UITokens -
// LLMTokens).
type ToolResultMetadata struct {
	Files         []string       `json:"files,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	LLMTokens     int            `json:"llm_tokens,omitempty"`
	UITokens      int            `json:"ui_tokens,omitempty"`
	SavingsTokens int            `json:"savings_tokens,omitempty"`
}

// ToolResult represents the output of a tool execution.
//
// Content/IsError remain the canonical single-channel fields for callers
// that never split (policy denials, loop-detector suppression, async job
// acknowledgements). LLMContent/UIContent hold the dual-channel split
// produced by a Summarizer when enable_split_tool_results is on: LLMContent
// goes back into the model's context window, UIContent is the fuller
// transcript shown to a human. FinalizeChannels fills the split from
// Content/IsError when a caller never set it, which is also how the
// enable_split_tool_results=false kill-switch is enforced (P6:
// llm_content == ui_content).
type ToolResult struct {
	ToolCallID  string              `json:"tool_call_id"`
	Content     string              `json:"content"`
	IsError     bool                `json:"is_error,omitempty"`
	Status      OutputStatus        `json:"status,omitempty"`
	LLMContent  string              `json:"llm_content,omitempty"`
	UIContent   string              `json:"ui_content,omitempty"`
	Metadata    *ToolResultMetadata `json:"metadata,omitempty"`
	Attachments []Attachment        `json:"attachments,omitempty"`
}

// FinalizeChannels backfills Status and the dual-channel content from
// Content/IsError for callers that construct a ToolResult without going
// through a Summarizer. Safe to call more than once.
func (r *ToolResult) FinalizeChannels() {
	if r.Status == "" {
		if r.IsError {
			r.Status = StatusFailed
		} else {
			r.Status = StatusSuccess
		}
	}
	if r.LLMContent == "" {
		r.LLMContent = r.Content
	}
	if r.UIContent == "" {
		r.UIContent = r.Content
	}
}

// Session represents a conversation thread.
type Session struct {
	ID        string            `json:"id"`
	AgentID   string            `json:"agent_id"`
	Channel   ChannelType       `json:"channel"`
	ChannelID string            `json:"channel_id"`
	Key       string            `json:"key"`
	Title     string            `json:"title,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// User represents an authenticated user.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	ProviderID string    `json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Agent represents a configured AI agent.
type Agent struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	Model        string         `json:"model"`
	Provider     string         `json:"provider"`
	Tools        []string       `json:"tools,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// APIKey represents an API key for programmatic access.
type APIKey struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"` // First 8 chars for identification
	Scopes     []string  `json:"scopes,omitempty"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
