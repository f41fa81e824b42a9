package services

import "sync"

// WriteGate serialises mutating operations across the two stores. SQLite
// and most vector backends handle their own locking, but the dual-store
// write sequence is only atomic if no other writer interleaves, so every
// mutation in this process takes the gate first. Reads never do.
type WriteGate struct {
	mu sync.Mutex
}

// NewWriteGate creates a write gate shared by the services of one Service.
func NewWriteGate() *WriteGate {
	return &WriteGate{}
}

// Lock acquires exclusive write access.
func (g *WriteGate) Lock() {
	g.mu.Lock()
}

// Unlock releases write access.
func (g *WriteGate) Unlock() {
	g.mu.Unlock()
}
