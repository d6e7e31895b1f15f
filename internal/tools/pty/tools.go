package pty

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vtcode-ai/vtcode/internal/agent"
)

// CreateSessionTool implements create_pty_session.
type CreateSessionTool struct {
	manager *Manager
}

// NewCreateSessionTool creates the create_pty_session built-in.
func NewCreateSessionTool(manager *Manager) *CreateSessionTool {
	return &CreateSessionTool{manager: manager}
}

func (t *CreateSessionTool) Name() string { return "create_pty_session" }

func (t *CreateSessionTool) Description() string {
	return "Start a long-running shell session with bounded scrollback. Returns a session id for send_pty_input/read_pty_session."
}

func (t *CreateSessionTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"shell": map[string]interface{}{
				"type":        "string",
				"description": "Shell to launch (default: the configured preferred shell).",
			},
			"cwd": map[string]interface{}{
				"type":        "string",
				"description": "Working directory, relative to the workspace.",
			},
		},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *CreateSessionTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.manager == nil {
		return toolError("pty manager unavailable"), nil
	}
	var input struct {
		Shell string `json:"shell"`
		CWD   string `json:"cwd"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &input); err != nil {
			return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}
	sess, err := t.manager.Create(ctx, input.Shell, input.CWD)
	if err != nil {
		return toolError(err.Error()), nil
	}
	payload, _ := json.MarshalIndent(map[string]interface{}{
		"session_id": sess.ID,
		"shell":      sess.Shell,
		"cwd":        sess.CWD,
	}, "", "  ")
	return &agent.ToolResult{Content: string(payload)}, nil
}

// SendInputTool implements send_pty_input: runs a command, or writes raw
// bytes (e.g. a control character) when raw is set.
type SendInputTool struct {
	manager *Manager
}

// NewSendInputTool creates the send_pty_input built-in.
func NewSendInputTool(manager *Manager) *SendInputTool {
	return &SendInputTool{manager: manager}
}

func (t *SendInputTool) Name() string { return "send_pty_input" }

func (t *SendInputTool) Description() string {
	return "Send a command or raw input to an open PTY session created by create_pty_session."
}

func (t *SendInputTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session id returned by create_pty_session.",
			},
			"input": map[string]interface{}{
				"type":        "string",
				"description": "Command or raw bytes to send.",
			},
			"raw": map[string]interface{}{
				"type":        "boolean",
				"description": "When true, send input verbatim without appending a newline.",
			},
		},
		"required": []string{"session_id", "input"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SendInputTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	if t.manager == nil {
		return toolError("pty manager unavailable"), nil
	}
	var input struct {
		SessionID string `json:"session_id"`
		Input     string `json:"input"`
		Raw       bool   `json:"raw"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	sess, ok := t.manager.Get(strings.TrimSpace(input.SessionID))
	if !ok {
		return toolError("pty session not found"), nil
	}

	var err error
	if input.Raw {
		err = t.manager.Write(sess, []byte(input.Input))
	} else {
		err = t.manager.Run(sess, input.Input)
	}
	if err != nil {
		return toolError(err.Error()), nil
	}
	payload, _ := json.MarshalIndent(map[string]interface{}{"status": "sent"}, "", "  ")
	return &agent.ToolResult{Content: string(payload)}, nil
}

// ReadSessionTool implements read_pty_session.
type ReadSessionTool struct {
	manager *Manager
}

// NewReadSessionTool creates the read_pty_session built-in.
func NewReadSessionTool(manager *Manager) *ReadSessionTool {
	return &ReadSessionTool{manager: manager}
}

func (t *ReadSessionTool) Name() string { return "read_pty_session" }

func (t *ReadSessionTool) Description() string {
	return "Read the scrollback of an open PTY session, optionally waiting up to timeout_seconds for the process to exit."
}

func (t *ReadSessionTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session id returned by create_pty_session.",
			},
			"max_bytes": map[string]interface{}{
				"type":        "integer",
				"description": "Cap on returned output size (0 = no cap).",
				"minimum":     0,
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "number",
				"description": "How long to wait for the process to produce more output or exit.",
				"minimum":     0,
			},
			"close": map[string]interface{}{
				"type":        "boolean",
				"description": "Close the session after reading.",
			},
		},
		"required": []string{"session_id"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *ReadSessionTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	if t.manager == nil {
		return toolError("pty manager unavailable"), nil
	}
	var input struct {
		SessionID      string  `json:"session_id"`
		MaxBytes       int     `json:"max_bytes"`
		TimeoutSeconds float64 `json:"timeout_seconds"`
		Close          bool    `json:"close"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	sess, ok := t.manager.Get(strings.TrimSpace(input.SessionID))
	if !ok {
		return toolError("pty session not found"), nil
	}

	timeout := time.Duration(input.TimeoutSeconds * float64(time.Second))
	result, err := t.manager.Read(sess, input.MaxBytes, timeout)
	if err != nil {
		return toolError(err.Error()), nil
	}
	if input.Close {
		_ = t.manager.Close(sess)
	}

	payload, _ := json.MarshalIndent(map[string]interface{}{
		"output":            result.Output,
		"overflow_detected": result.OverflowDetected,
		"spooled":           result.Spooled,
		"spool_path":        result.SpoolPath,
		"exited":            result.Exited,
		"exit_code":         result.ExitCode,
	}, "", "  ")
	return &agent.ToolResult{Content: string(payload)}, nil
}

func toolError(message string) *agent.ToolResult {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
