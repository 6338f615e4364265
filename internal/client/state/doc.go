// Package state holds the authentication state of the running client.
//
// AuthState is changed only by dispatching one of the events declared in
// this package to a Machine; the event set is closed (Event has an
// unexported method). Reduce is the pure transition function, and Machine
// is the single-writer container around it:
//
//	m := state.New(log)
//	unsubscribe := m.Subscribe(func(s state.AuthState) { render(s) })
//	defer unsubscribe()
//	m.Dispatch(state.SetLoading{Loading: true})
//
// Invariant kept by every transition: IsAuthenticated is true exactly when
// both User and Token are set.
package state
