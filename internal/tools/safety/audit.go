package safety

import (
	"sync"
	"time"
)

// AuditEntry is one append-only record of a safety evaluation.
type AuditEntry struct {
	Timestamp    time.Time
	Command      string
	Decision     string
	Reason       string
	ResolvedPath string
}

// AuditLog accumulates AuditEntry records in memory. It never mutates or
// removes a prior entry; callers wanting durable persistence can drain
// Entries() into a sessions.Store or jobs.Store-backed sink.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// NewAuditLog returns an empty in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends one evaluation outcome to the log.
func (a *AuditLog) Record(command string, decision Decision, note string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, AuditEntry{
		Timestamp:    time.Now(),
		Command:      command,
		Decision:     decision.Verdict.String(),
		Reason:       firstNonEmpty(decision.Reason, note),
		ResolvedPath: decision.ResolvedPath,
	})
}

// Entries returns a copy of every recorded entry in append order.
func (a *AuditLog) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
