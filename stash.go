package lactoserv

import (
	"net"
	"sync"
	"time"
)

// StashTimeout bounds how long a stashed socket survives without being
// adopted (default 5s).
const StashTimeout = 5 * time.Second

// stashEntry is one listening socket held in the stash registry awaiting
// adoption by a successor endpoint.
type stashEntry struct {
	listener net.Listener
	timer    *time.Timer
}

// StashRegistry is the process-wide holding area for listening sockets
// across reload, keyed by interface equality (see
// "Stash"). At most one stashed socket exists per interface; a re-stash
// of the same interface replaces (and closes) the prior one.
type StashRegistry struct {
	mu      sync.Mutex
	entries map[uint64]*stashEntry
}

// NewStashRegistry returns an empty registry.
func NewStashRegistry() *StashRegistry {
	return &StashRegistry{entries: map[uint64]*stashEntry{}}
}

// Stash stores listener under iface's key, to be reused within timeout
// (StashTimeout if timeout <= 0) unless adopted first. Replacing an
// existing entry for the same interface closes the prior listener.
func (r *StashRegistry) Stash(iface InterfaceAddress, listener net.Listener, timeout time.Duration) {
	if timeout <= 0 {
		timeout = StashTimeout
	}

	key := iface.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		existing.timer.Stop()
		existing.listener.Close()
	}

	entry := &stashEntry{listener: listener}
	entry.timer = time.AfterFunc(timeout, func() {
		r.expire(key, listener)
	})
	r.entries[key] = entry
}

func (r *StashRegistry) expire(key uint64, listener net.Listener) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok || entry.listener != listener {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	listener.Close()
}

// Adopt removes and returns the stashed listener for iface, if any, and
// whether one was found. Adoption cancels the stash timer.
func (r *StashRegistry) Adopt(iface InterfaceAddress) (net.Listener, bool) {
	key := iface.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, false
	}

	entry.timer.Stop()
	delete(r.entries, key)

	return entry.listener, true
}

// Len reports the number of currently stashed sockets (for diagnostics
// and tests).
func (r *StashRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
