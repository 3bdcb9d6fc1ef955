package forestfire

import "sync"

// Mailbox is a single-slot, last-write-wins, watch-style channel: Send
// overwrites any value not yet received. Used for the single-writer
// ConfiguredParameters channel and for publishing frame snapshots from the
// producer-thread simulation loop embedding.
type Mailbox[T any] struct {
	mu  sync.Mutex
	val T
	has bool
}

// Send stores v, discarding any previously sent, not-yet-received value.
func (m *Mailbox[T]) Send(v T) {
	m.mu.Lock()
	m.val = v
	m.has = true
	m.mu.Unlock()
}

// Recv takes the stored value, if any. ok is false if nothing has been sent
// since the last Recv.
func (m *Mailbox[T]) Recv() (v T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return v, false
	}
	v, m.has = m.val, false
	return v, true
}

// Peek returns the stored value without consuming it.
func (m *Mailbox[T]) Peek() (v T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val, m.has
}
