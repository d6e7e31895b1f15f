package pty

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vtcode-ai/vtcode/internal/tools/files"
	"github.com/vtcode-ai/vtcode/internal/tools/safety"
)

// DefaultSpoolThresholdBytes is the per-read output size above which output
// is spooled to a temp file instead of returned inline (§4.8).
const DefaultSpoolThresholdBytes = 5 << 20 // 5 MB

// Session is a long-running shell process with bounded scrollback.
type Session struct {
	ID        string
	Shell     string
	CWD       string
	StartedAt time.Time

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	scrollback *Scrollback
	cancel     context.CancelFunc
	done       chan struct{}
	exitCode   *int
	exitErr    error
	spoolFile  *os.File
	spoolPath  string
	spoolBytes int
}

// Exited reports whether the underlying process has finished.
func (s *Session) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code once Exited() is true.
func (s *Session) ExitCode() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// Manager creates and tracks PTY-style sessions (§4.8 PTY session manager).
// Sessions are owned by the manager; callers hold only Session handles, never
// raw file descriptors, matching the spec's shared-resources rule.
type Manager struct {
	mu             sync.Mutex
	sessions       map[string]*Session
	resolver       files.Resolver
	safetyEval     *safety.Evaluator
	scrollLines    int
	scrollBytes    int
	spoolThreshold int
	preferredShell string
}

// Config configures a Manager's default limits (§6 [pty] keys).
type Config struct {
	ScrollbackLines        int
	MaxScrollbackBytes     int
	LargeOutputThresholdKB int
	PreferredShell         string
}

// NewManager creates a PTY session manager scoped to the given workspace.
func NewManager(workspace string, cfg Config) *Manager {
	if cfg.ScrollbackLines <= 0 {
		cfg.ScrollbackLines = DefaultScrollbackLines
	}
	if cfg.MaxScrollbackBytes <= 0 {
		cfg.MaxScrollbackBytes = DefaultMaxScrollbackByte
	}
	spoolThreshold := DefaultSpoolThresholdBytes
	if cfg.LargeOutputThresholdKB > 0 {
		spoolThreshold = cfg.LargeOutputThresholdKB << 10
	}
	shell := cfg.PreferredShell
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Manager{
		sessions:       make(map[string]*Session),
		resolver:       files.Resolver{Root: workspace},
		safetyEval:     safety.NewEvaluator(safety.Config{WorkspaceRoot: workspace}, safety.NewAuditLog()),
		scrollLines:    cfg.ScrollbackLines,
		scrollBytes:    cfg.MaxScrollbackBytes,
		spoolThreshold: spoolThreshold,
		preferredShell: shell,
	}
}

// SetSafetyEvaluator overrides the manager's command safety evaluator so it
// can share one evaluator (and audit log) with the exec tool's Manager.
func (m *Manager) SetSafetyEvaluator(e *safety.Evaluator) {
	m.safetyEval = e
}

// Create starts a new shell session (create(shell?, cwd?)). An empty shell
// uses the manager's preferred shell.
func (m *Manager) Create(ctx context.Context, shell, cwd string) (*Session, error) {
	if shell == "" {
		shell = m.preferredShell
	}

	dir := ""
	if cwd != "" {
		resolved, err := m.resolver.Resolve(cwd)
		if err != nil {
			return nil, err
		}
		dir = resolved
	} else if resolved, err := m.resolver.Resolve("."); err == nil {
		dir = resolved
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, shell, "-i")
	if dir != "" {
		cmd.Dir = dir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	sess := &Session{
		ID:         uuid.NewString(),
		Shell:      shell,
		CWD:        dir,
		StartedAt:  time.Now(),
		cmd:        cmd,
		stdin:      stdin,
		scrollback: NewScrollback(m.scrollLines, m.scrollBytes),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	stdout := &sessionWriter{session: sess}
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdin.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	go func() {
		err := cmd.Wait()
		sess.mu.Lock()
		code := exitCodeOf(err)
		sess.exitCode = &code
		sess.exitErr = err
		if sess.spoolFile != nil {
			_ = sess.spoolFile.Close()
		}
		sess.mu.Unlock()
		close(sess.done)
	}()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Run writes a command plus newline to the session's stdin (run(session,
// command)). It does not wait for output; callers follow with Read.
func (m *Manager) Run(session *Session, command string) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	if m.safetyEval != nil {
		decision := m.safetyEval.Evaluate(command)
		if decision.Verdict == safety.Denied {
			return fmt.Errorf("command denied by safety evaluator: %s", decision.Reason)
		}
	}
	session.mu.Lock()
	stdin := session.stdin
	session.mu.Unlock()
	if stdin == nil {
		return fmt.Errorf("session stdin closed")
	}
	_, err := io.WriteString(stdin, command+"\n")
	return err
}

// Write sends raw bytes to the session's stdin (write(session, bytes)),
// without appending a trailing newline. Used by the send_pty_input tool for
// control characters and partial input.
func (m *Manager) Write(session *Session, data []byte) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	session.mu.Lock()
	stdin := session.stdin
	session.mu.Unlock()
	if stdin == nil {
		return fmt.Errorf("session stdin closed")
	}
	_, err := stdin.Write(data)
	return err
}

// ReadResult is returned by Read: the scrollback snapshot (or a head/tail
// digest plus spool path when output exceeded the spool threshold), overflow
// status, and whether the process has exited.
type ReadResult struct {
	Output           string
	SpoolPath        string
	Spooled          bool
	OverflowDetected bool
	Exited           bool
	ExitCode         *int
}

// Read returns the session's current scrollback snapshot (read(session,
// max_bytes, timeout)). timeout bounds how long Read waits for the process
// to produce more output before returning what it has; 0 returns
// immediately.
func (m *Manager) Read(session *Session, maxBytes int, timeout time.Duration) (ReadResult, error) {
	if session == nil {
		return ReadResult{}, fmt.Errorf("session is nil")
	}
	if timeout > 0 {
		select {
		case <-session.done:
		case <-time.After(timeout):
		}
	}

	snapshot, overflow := session.scrollback.Snapshot()

	session.mu.Lock()
	spoolPath := session.spoolPath
	spoolBytes := session.spoolBytes
	exited := session.Exited()
	exitCode := session.exitCode
	session.mu.Unlock()

	res := ReadResult{
		OverflowDetected: overflow,
		Exited:           exited,
		ExitCode:         exitCode,
	}

	if spoolPath != "" && spoolBytes > m.spoolThreshold {
		res.Spooled = true
		res.SpoolPath = spoolPath
		res.Output = headTail(snapshot, maxBytes)
		return res, nil
	}

	if maxBytes > 0 && len(snapshot) > maxBytes {
		snapshot = snapshot[len(snapshot)-maxBytes:]
	}
	res.Output = snapshot
	return res, nil
}

// Close terminates the session's process and releases its resources
// (close(session)).
func (m *Manager) Close(session *Session) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	session.mu.Lock()
	if session.stdin != nil {
		_ = session.stdin.Close()
	}
	session.mu.Unlock()
	if session.cancel != nil {
		session.cancel()
	}
	m.mu.Lock()
	delete(m.sessions, session.ID)
	m.mu.Unlock()
	return nil
}

// sessionWriter routes a session's combined stdout/stderr into its
// scrollback ring, spooling to a temp file once output crosses the manager's
// large-output threshold.
type sessionWriter struct {
	session *Session
}

func (w *sessionWriter) Write(p []byte) (int, error) {
	w.session.scrollback.Write(string(p))

	w.session.mu.Lock()
	defer w.session.mu.Unlock()
	w.session.spoolBytes += len(p)
	if w.session.spoolFile == nil {
		f, err := os.CreateTemp("", "vtcode-pty-*.log")
		if err == nil {
			w.session.spoolFile = f
			w.session.spoolPath = f.Name()
		}
	}
	if w.session.spoolFile != nil {
		_, _ = w.session.spoolFile.Write(p)
	}
	return len(p), nil
}

// headTail returns the first and last portions of s, each up to half of
// maxBytes, joined with a truncation marker, for a large spooled output.
func headTail(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	half := maxBytes / 2
	head := s[:half]
	tail := s[len(s)-half:]
	return head + "\n...[output spooled, see spool path]...\n" + tail
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
