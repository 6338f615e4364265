package otp

import "sync"

// loadingGate hands the shared loading flag to one call at a time. Each
// acquire gets a fresh ticket; release clears the flag only while that
// ticket is still the newest, so a call abandoned by a closed challenge
// cannot clear the flag of a call that started after it.
type loadingGate struct {
	auth Authenticator

	mu     sync.Mutex
	last   uint64
	holder uint64
}

func newLoadingGate(auth Authenticator) *loadingGate {
	return &loadingGate{auth: auth}
}

func (g *loadingGate) acquire() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	g.holder = g.last
	g.auth.SetLoading(true)
	return g.last
}

// release clears the flag if ticket still holds it.
func (g *loadingGate) release(ticket uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ticket == 0 || g.holder != ticket {
		return
	}
	g.holder = 0
	g.auth.SetLoading(false)
}

// settle forgets ticket without touching the flag; used after an outcome
// (sign-in or failure) has already cleared loading in the auth state.
func (g *loadingGate) settle(ticket uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder == ticket {
		g.holder = 0
	}
}
