package session

import "sync"

// Registry maps each user to at most one live session. Every state
// machine operation runs while holding that user's slot lock, so two
// near-simultaneous actions from the same user cannot corrupt a session,
// and a slow operation for one user never blocks another user's slot.
//
// The registry is purely in-memory: a process restart loses in-flight
// tests, which is acceptable (users restart their test). Slots are never
// removed once created, only emptied; an abandoned session lingers in its
// slot until the next Set overwrites it.
type Registry struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	mu   sync.Mutex
	sess *Session
}

func NewRegistry() *Registry {
	return &Registry{slots: make(map[int64]*slot)}
}

func (r *Registry) slot(userID int64) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	sl, ok := r.slots[userID]
	if !ok {
		sl = &slot{}
		r.slots[userID] = sl
	}
	return sl
}

// Slot is a locked handle on one user's session slot. It must be
// released exactly once, before any response is rendered.
type Slot struct {
	sl *slot
}

// Acquire locks the user's slot and returns the handle. The lock covers
// a single state-machine operation (create, submit, finish, consume,
// abandon) including, for finish, the result-store append.
func (r *Registry) Acquire(userID int64) *Slot {
	sl := r.slot(userID)
	sl.mu.Lock()
	return &Slot{sl: sl}
}

// Session returns the slot's current session, or nil if the user has no
// live test.
func (s *Slot) Session() *Session {
	return s.sl.sess
}

// Set installs sess as the user's session, silently replacing any prior
// one. Starting a new test discards the old one.
func (s *Slot) Set(sess *Session) {
	if old := s.sl.sess; old != nil {
		old.Abandon()
	}
	s.sl.sess = sess
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.sl.sess = nil
}

// Release unlocks the slot.
func (s *Slot) Release() {
	s.sl.mu.Unlock()
}

// ActiveTests counts sessions currently being taken. The registry mutex
// is dropped before any slot lock is taken, so a slot held through a slow
// finish never blocks other users' Acquire calls behind this count.
func (r *Registry) ActiveTests() int {
	r.mu.Lock()
	snapshot := make([]*slot, 0, len(r.slots))
	for _, sl := range r.slots {
		snapshot = append(snapshot, sl)
	}
	r.mu.Unlock()

	n := 0
	for _, sl := range snapshot {
		sl.mu.Lock()
		if sl.sess != nil && sl.sess.State == StateInProgress {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}
