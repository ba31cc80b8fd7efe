// Package mailbox implements the lock-free single-producer/single-consumer
// queue used to hand protocol messages from a connection's network-reader
// goroutine to the coordinator's poll() loop, per spec.md §5: "Handoff
// uses a lock-free or mutex-protected queue... the coordinator never holds
// the queue lock while running game logic."
//
// Adapted from the teacher's internal/game/spatial/lockfree_queue.go,
// trimmed to the SPSC variant only (the MPSC path and its CAS machinery
// aren't needed here: each connection has exactly one reader goroutine).
package mailbox

import "sync/atomic"

// Mailbox is a bounded ring buffer sized to a power of two. One goroutine
// may call Push; a different single goroutine may call Pop/Drain;
// concurrent calls from more than one goroutine on either side race.
type Mailbox[T any] struct {
	buf  []T
	mask uint64

	head atomic.Uint64 // next slot to write
	tail atomic.Uint64 // next slot to read
}

// New creates a Mailbox of capacity rounded up to the next power of two
// (minimum 8).
func New[T any](capacity int) *Mailbox[T] {
	size := 8
	for size < capacity {
		size *= 2
	}
	return &Mailbox[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// TryPush adds v without blocking. Returns false if the mailbox is full.
func (m *Mailbox[T]) TryPush(v T) bool {
	head := m.head.Load()
	tail := m.tail.Load()
	if head-tail >= uint64(len(m.buf)) {
		return false
	}
	m.buf[head&m.mask] = v
	m.head.Store(head + 1)
	return true
}

// TryPop removes and returns the oldest value without blocking. ok is
// false if the mailbox is empty.
func (m *Mailbox[T]) TryPop() (v T, ok bool) {
	tail := m.tail.Load()
	head := m.head.Load()
	if tail >= head {
		return v, false
	}
	v = m.buf[tail&m.mask]
	m.tail.Store(tail + 1)
	return v, true
}

// Len returns the approximate number of queued items.
func (m *Mailbox[T]) Len() int {
	return int(m.head.Load() - m.tail.Load())
}

// Drain pops every currently available item in FIFO order, for the
// coordinator's poll() to consume a whole batch at once without holding
// any lock across game-logic execution.
func (m *Mailbox[T]) Drain() []T {
	var out []T
	for {
		v, ok := m.TryPop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
