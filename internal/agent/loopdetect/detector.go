// Package loopdetect implements the repeat-signature suppression the
// Turn Loop uses to catch a model stuck reissuing the same tool call.
package loopdetect

import "sync"

// DefaultThreshold is the number of repeats of a signature allowed
// before Record reports that the caller should suppress the call.
const DefaultThreshold = 3

// Detector maintains a per-signature repeat count. It is the Turn
// Loop's guard against a model stuck reissuing the same tool call with
// the same arguments: once a signature has been recorded more than
// Threshold times since its last reset, Record returns true and the
// caller should suppress the invocation.
type Detector struct {
	mu        sync.Mutex
	threshold int
	counts    map[string]int
	disabled  map[string]bool // sessionID -> DisableForSession was chosen
}

// New returns a Detector with the given threshold. A threshold <= 0
// uses DefaultThreshold.
func New(threshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		counts:    make(map[string]int),
		disabled:  make(map[string]bool),
	}
}

// Record increments the repeat count for signature and reports whether
// it has now exceeded the threshold. If sessionID has previously chosen
// DisableForSession, Record always returns false without touching the
// count, so the model can keep retrying for the rest of the session.
func (d *Detector) Record(sessionID, signature string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disabled[sessionID] {
		return false
	}

	d.counts[signature]++
	return d.counts[signature] > d.threshold
}

// Peek reports the current repeat count for signature without
// incrementing it.
func (d *Detector) Peek(signature string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[signature]
}

// WouldTrigger reports whether the next Record call for signature would
// return true, without mutating any state.
func (d *Detector) WouldTrigger(signature string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[signature]+1 > d.threshold
}

// ResetSignature clears the repeat count for one signature, e.g. after
// the user chooses KeepEnabled so the model may retry with a different
// argument.
func (d *Detector) ResetSignature(signature string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.counts, signature)
}

// Reset clears every tracked signature and session override.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts = make(map[string]int)
	d.disabled = make(map[string]bool)
}

// KeepEnabled resets only the triggering signature's count, per §4.7:
// the detector stays active for the rest of the session, but the model
// may retry this tool with a different argument.
func (d *Detector) KeepEnabled(signature string) {
	d.ResetSignature(signature)
}

// DisableForSession short-circuits future Record calls for sessionID to
// always return false, for the remainder of the session.
func (d *Detector) DisableForSession(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disabled[sessionID] = true
}
