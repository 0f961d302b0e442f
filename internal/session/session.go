package session

import (
	"sync"

	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/state"
)

// Session is the explicit per-participant context: the room it belongs to,
// the declared role, and the current local state. Mutations go through
// Update so that every change raises a discrete event for the producer and
// any local watchers; there is no ambient global store.
type Session struct {
	RoomID string
	Role   relay.Role

	mu sync.RWMutex
	st state.SessionState

	// dirty coalesces mutation events for the producer. Capacity one:
	// the producer reads current state when it wakes, so back-to-back
	// mutations collapse into a single event.
	dirty chan struct{}

	// watchers receive a copy of the state after every change, local or
	// merged. Slow watchers get the latest state, not every intermediate.
	watchMu  sync.Mutex
	watchers []chan state.SessionState
}

// New creates a session for the given room and role with empty state.
func New(roomID string, role relay.Role) *Session {
	return &Session{
		RoomID: relay.CanonicalRoomID(roomID),
		Role:   role,
		dirty:  make(chan struct{}, 1),
	}
}

// Update applies a local mutation under the session lock and raises a
// change event. Only meaningful on the owner side, but safe anywhere.
func (s *Session) Update(fn func(*state.SessionState)) {
	s.mu.Lock()
	fn(&s.st)
	snap := s.st.Clone()
	s.mu.Unlock()

	select {
	case s.dirty <- struct{}{}:
	default:
	}
	s.notify(snap)
}

// ApplySnapshot merges an inbound snapshot into local state. The merge is
// atomic with respect to State readers. Owners do not consume broadcasts,
// even if one somehow arrives.
func (s *Session) ApplySnapshot(m state.Snapshot) {
	if s.Role == relay.RoleOwner {
		return
	}

	s.mu.Lock()
	s.st.Apply(m)
	snap := s.st.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// State returns a copy of the current session state.
func (s *Session) State() state.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Clone()
}

// Dirty returns the channel of coalesced local-mutation events.
func (s *Session) Dirty() <-chan struct{} {
	return s.dirty
}

// Watch registers a watcher that receives the state after every change.
// Watchers that fall behind see only the most recent state.
func (s *Session) Watch() <-chan state.SessionState {
	ch := make(chan state.SessionState, 1)
	s.watchMu.Lock()
	s.watchers = append(s.watchers, ch)
	s.watchMu.Unlock()
	return ch
}

func (s *Session) notify(snap state.SessionState) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		// Replace a pending state rather than blocking.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
