// Package attempts counts join attempts per (group, user) pair.
//
// Counts live in memory for the process lifetime only and reset on restart.
// That is deliberate: the counter exists to bound brute-force join attempts,
// not to be an exact durable record.
package attempts

import (
	"sync"

	"github.com/joingate/joingate/internal/model"
)

// Tracker is a process-lifetime attempt counter. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	counts map[model.AttemptKey]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: make(map[model.AttemptKey]int)}
}

// Record increments the counter for the pair and returns the new count.
// The first call for a pair returns 1.
func (t *Tracker) Record(key model.AttemptKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[key]++
	return t.counts[key]
}

// Count returns the current count for the pair without incrementing.
func (t *Tracker) Count(key model.AttemptKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.counts[key]
}
