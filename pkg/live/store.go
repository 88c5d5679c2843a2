package live

import (
	"sync"
)

// Store holds the committed snapshot of one station plus the tick sequence.
type Store struct {
	mu        sync.RWMutex
	issued    uint64
	committed Snapshot
	// inFlight counts begun ticks that have not finished. settled is the state shown once
	// they are all gone without a commit.
	inFlight int
	settled  ConnectionState
}

func NewStore(initial Snapshot) *Store {
	return &Store{committed: initial, settled: initial.State}
}

// Begin issues the sequence number of a new tick and flips the global indicator to
// Connecting. Gauges keep showing the last committed readings.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.inFlight++
	s.committed.State = StateConnecting
	return s.issued
}

// Abandon ends a tick that will never be applied. The indicator falls back to the last
// committed state when no other tick is running.
func (s *Store) Abandon() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish()
	return s.committed
}

func (s *Store) finish() {
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.inFlight == 0 && s.committed.State == StateConnecting {
		s.committed.State = s.settled
	}
}

// Apply reduces a tick result against the committed snapshot under the store lock. The
// result is kept only if it comes from a newer tick than the committed snapshot.
func (s *Store) Apply(reduce func(prev Snapshot) Snapshot) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := reduce(s.committed)
	if next.Seq <= s.committed.Seq {
		s.finish()
		return s.committed, false
	}
	s.committed = next
	s.settled = next.State
	s.finish()
	return next, true
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}
