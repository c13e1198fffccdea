package state

import (
	"fmt"
	"sync"
)

// IDAllocator hands out monotonically increasing object numbers per id
// prefix (VEHICLE_, AGENT_, ...). Several call sites may ask for ids, so
// issuance is serialised by a mutex.
type IDAllocator struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{counts: make(map[string]uint64)}
}

// Next returns the next number for prefix, starting at 0.
func (a *IDAllocator) Next(prefix string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.counts[prefix]
	a.counts[prefix] = n + 1
	return n
}

// NewID returns prefix followed by the next number for that prefix.
func (a *IDAllocator) NewID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, a.Next(prefix))
}

// Seed raises the counter for prefix to at least n. Used after a load so
// new ids never collide with persisted ones; it never lowers a counter.
func (a *IDAllocator) Seed(prefix string, n uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.counts[prefix] {
		a.counts[prefix] = n
	}
}

// Snapshot returns a copy of all counters.
func (a *IDAllocator) Snapshot() map[string]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]uint64, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}
