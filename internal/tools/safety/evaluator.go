package safety

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vtcode-ai/vtcode/internal/cache"
	"github.com/vtcode-ai/vtcode/internal/tools/files"
)

// Verdict is the outcome of evaluating a command.
type Verdict int

const (
	Allowed Verdict = iota
	Denied
	RequiresApproval
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case RequiresApproval:
		return "requires_approval"
	default:
		return "denied"
	}
}

// Decision is the result of evaluating one command, cached and audited
// under its canonicalized command text.
type Decision struct {
	Verdict      Verdict
	Reason       string
	ResolvedPath string
}

// Config tunes the evaluator's allow-list, argument rules, and decision
// cache. A zero-value Config falls back to DefaultAllowList.
type Config struct {
	AllowList     map[string]bool
	ExtraAllowed  []string
	WorkspaceRoot string
	CacheTTL      time.Duration
}

// Evaluator is the Command Safety Evaluator: the gate every shell and PTY
// invocation passes through before it reaches an exec.Cmd. It layers a
// command allow-list, a per-command argument validator, a workspace
// boundary check, shell-chain recursion, and a platform dangerous-pattern
// deny list, caching decisions by canonicalized command text and
// recording every evaluation to an append-only audit log.
type Evaluator struct {
	mu        sync.RWMutex
	allowList map[string]bool
	resolver  files.Resolver
	fresh     *cache.DedupeCache // tracks whether a key's cached decision is still within TTL
	decisions map[string]Decision
	audit     *AuditLog
}

// NewEvaluator constructs an Evaluator scoped to workspaceRoot.
func NewEvaluator(cfg Config, auditLog *AuditLog) *Evaluator {
	allow := cfg.AllowList
	if allow == nil {
		allow = make(map[string]bool, len(DefaultAllowList))
		for k, v := range DefaultAllowList {
			allow[k] = v
		}
	}
	for _, extra := range cfg.ExtraAllowed {
		allow[extra] = true
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 300 * time.Second
	}

	if auditLog == nil {
		auditLog = NewAuditLog()
	}

	return &Evaluator{
		allowList: allow,
		resolver:  files.Resolver{Root: cfg.WorkspaceRoot},
		fresh:     cache.NewDedupeCache(cache.DedupeCacheOptions{TTL: ttl}),
		decisions: make(map[string]Decision),
		audit:     auditLog,
	}
}

// Evaluate runs the full layered gate over a raw command string (the
// literal text that would be handed to `/bin/sh -c`) and returns the
// top-level decision. Every sub-command reached via shell-chain
// recursion must also pass, satisfying the composition law: a chain is
// Denied if any constituent command would be Denied on its own.
func (e *Evaluator) Evaluate(command string) Decision {
	key := canonicalize(command)

	if e.fresh.Check(key) {
		e.mu.RLock()
		cached, ok := e.decisions[key]
		e.mu.RUnlock()
		if ok {
			e.audit.Record(command, cached, "cache hit")
			return cached
		}
	}

	parsed := ParseShellScript(command)
	decision := e.evaluateParsed(parsed)

	e.mu.Lock()
	e.decisions[key] = decision
	e.mu.Unlock()

	e.audit.Record(command, decision, "evaluated")
	return decision
}

func (e *Evaluator) evaluateParsed(p ParsedCommand) Decision {
	if p.Kind == KindChain {
		for _, part := range p.Parts {
			if d := e.evaluateParsed(part); d.Verdict == Denied {
				return d
			}
		}
		// A chain is only fully Allowed if every part is; otherwise the
		// weakest verdict among its parts (approval > allowed) governs.
		verdict := Allowed
		var reason string
		for _, part := range p.Parts {
			d := e.evaluateParsed(part)
			if d.Verdict == RequiresApproval {
				verdict = RequiresApproval
				reason = d.Reason
			}
		}
		return Decision{Verdict: verdict, Reason: reason}
	}

	return e.evaluateAtom(p)
}

func (e *Evaluator) evaluateAtom(atom ParsedCommand) Decision {
	if atom.Base == "" {
		return Decision{Verdict: Denied, Reason: "empty command"}
	}

	if reason, denied := checkDangerousPattern(atom); denied {
		return Decision{Verdict: Denied, Reason: reason}
	}

	if isBlockedBinary(atom.Base) {
		return Decision{Verdict: Denied, Reason: "unsafe executable value: " + atom.Base}
	}

	if script, isWrapper := atom.ScriptArgument(); isWrapper {
		return e.evaluateParsed(ParseShellScript(script))
	}

	if reason, denied := validateArgs(atom.Base, atom.Args); denied {
		return Decision{Verdict: Denied, Reason: reason}
	}

	if reason, denied := e.checkWorkspaceBoundary(atom.Args); denied {
		return Decision{Verdict: Denied, Reason: reason}
	}

	e.mu.RLock()
	allowed := e.allowList[atom.Base]
	e.mu.RUnlock()
	if !allowed {
		return Decision{Verdict: RequiresApproval, Reason: "command not on allow-list: " + atom.Base}
	}

	return Decision{Verdict: Allowed}
}

// checkWorkspaceBoundary resolves every argument that looks like a path
// against the workspace root, denying the command if any escapes it.
func (e *Evaluator) checkWorkspaceBoundary(args []string) (string, bool) {
	for _, arg := range args {
		if !looksLikePathArgument(arg) {
			continue
		}
		if _, err := e.resolver.Resolve(arg); err != nil {
			return "path escapes workspace: " + arg, true
		}
	}
	return "", false
}

func looksLikePathArgument(arg string) bool {
	if arg == "" || strings.HasPrefix(arg, "-") {
		return false
	}
	return strings.ContainsAny(arg, "/\\") || strings.HasPrefix(arg, ".") || filepath.IsAbs(arg)
}

// canonicalize normalizes a command string for cache/audit keying:
// trimmed, whitespace-collapsed. It intentionally does not alter
// semantics-bearing characters (quotes, operators).
func canonicalize(command string) string {
	fields := strings.Fields(command)
	return strings.Join(fields, " ")
}

// ClearCache drops every cached decision, forcing re-evaluation on the
// next call. Invoked on explicit `clear` or a configuration reload.
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	e.decisions = make(map[string]Decision)
	e.mu.Unlock()
	e.fresh.Clear()
}
