package state

import "github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"

// Status is the coarse phase of authentication.
type Status int

const (
	// StatusUnknown is the startup phase, before the stored session has
	// been looked at.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthState is a snapshot of the authentication state. Snapshots handed out
// by Machine are copies; mutating one has no effect on the machine.
type AuthState struct {
	Status          Status
	IsAuthenticated bool
	IsLoading       bool
	User            *models.User
	Token           *models.Token
	Error           string
}

// Initial is the state at process start.
func Initial() AuthState {
	return AuthState{Status: StatusUnknown, IsLoading: true}
}

// Reduce returns the state that follows s after e. It never mutates s.
func Reduce(s AuthState, e Event) AuthState {
	next := s.clone()

	switch ev := e.(type) {
	case SetLoading:
		next.IsLoading = ev.Loading

	case LoginSuccess:
		u, t := ev.User, ev.Token
		next.Status = StatusAuthenticated
		next.IsAuthenticated = true
		next.User = &u
		next.Token = &t
		next.Error = ""
		next.IsLoading = false

	case LoginError:
		next.Status = StatusUnauthenticated
		next.IsAuthenticated = false
		next.User = nil
		next.Token = nil
		next.Error = ev.Message
		next.IsLoading = false

	case Logout:
		next = AuthState{Status: StatusUnauthenticated}

	case UpdateUser:
		if !next.IsAuthenticated || next.User == nil {
			return s
		}
		merged := next.User.Apply(ev.Patch)
		next.User = &merged

	case ClearError:
		next.Error = ""
	}

	return next
}

func (s AuthState) clone() AuthState {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Token != nil {
		t := *s.Token
		out.Token = &t
	}
	return out
}

// Session returns the current identity as a session, or nil when not
// authenticated.
func (s AuthState) Session() *models.Session {
	if !s.IsAuthenticated {
		return nil
	}
	return (&models.Session{User: s.User, Token: s.Token}).Clone()
}

func (s AuthState) equal(o AuthState) bool {
	if s.Status != o.Status || s.IsAuthenticated != o.IsAuthenticated ||
		s.IsLoading != o.IsLoading || s.Error != o.Error {
		return false
	}
	if (s.User == nil) != (o.User == nil) || (s.User != nil && *s.User != *o.User) {
		return false
	}
	if (s.Token == nil) != (o.Token == nil) || (s.Token != nil && *s.Token != *o.Token) {
		return false
	}
	return true
}
