package signal

import (
	"sync"
	"time"

	"github.com/displaywall/backend/internal/core"
)

// SelectionRateLimiter damps rapid reselection storms per session with a
// sliding window. Rapid reselection spawns independent delayed resolutions,
// so the cheapest place to cut the noise is before the protocol engine.
type SelectionRateLimiter struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
}

func NewSelectionRateLimiter(limit int, interval time.Duration) *SelectionRateLimiter {
	return &SelectionRateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *SelectionRateLimiter) Allow(sid core.SessionID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[sid] = fresh

	return true
}

// Forget drops the session's window. Sessions are per-connection uuids, so
// the history has to shrink with the registry or it grows with every client
// ever seen.
func (rl *SelectionRateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, sid)
}
