package state

import (
	"context"
	"sync"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
)

// Listener receives every new snapshot after a change.
type Listener func(AuthState)

type subscription struct {
	id uint64
	fn Listener
}

// Machine owns the AuthState of the process. Dispatch is the only write
// path; it is safe to call from any goroutine and from inside a listener.
//
// Listeners are called outside the lock, one snapshot at a time, in the
// order the changes were made. A Dispatch that happens while another
// goroutine is delivering notifications returns immediately and its
// snapshot is delivered by that goroutine.
type Machine struct {
	mu        sync.Mutex
	state     AuthState
	subs      []subscription
	nextID    uint64
	pending   []AuthState
	notifying bool
	log       logging.Logger
}

// New returns a Machine in the initial (loading, unknown) state.
func New(log logging.Logger) *Machine {
	if log == nil {
		log = logging.Nop()
	}
	return &Machine{state: Initial(), log: log.With("component", "auth_state")}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Dispatch applies e. Unchanged states are not broadcast.
func (m *Machine) Dispatch(e Event) {
	m.mu.Lock()
	prev := m.state
	next := Reduce(prev, e)
	m.state = next

	m.log.Debug(context.Background(), "auth event",
		"event", e.Name(), "status", next.Status.String(), "loading", next.IsLoading)

	if next.equal(prev) {
		m.mu.Unlock()
		return
	}

	m.pending = append(m.pending, next.clone())
	if m.notifying {
		m.mu.Unlock()
		return
	}
	m.notifying = true

	for len(m.pending) > 0 {
		snap := m.pending[0]
		m.pending = m.pending[1:]
		subs := make([]subscription, len(m.subs))
		copy(subs, m.subs)
		m.mu.Unlock()

		for _, s := range subs {
			s.fn(snap.clone())
		}

		m.mu.Lock()
	}
	m.notifying = false
	m.mu.Unlock()
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (m *Machine) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}
