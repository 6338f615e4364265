package state

import "github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"

// Event is a request to change AuthState.
type Event interface {
	// Name is the event's wire-style name, used in logs.
	Name() string
	isEvent()
}

// SetLoading sets IsLoading and nothing else.
type SetLoading struct {
	Loading bool
}

// LoginSuccess moves to Authenticated with the given identity.
type LoginSuccess struct {
	User  models.User
	Token models.Token
}

// LoginError moves to Unauthenticated and records Message.
type LoginError struct {
	Message string
}

// Logout resets to the initial shape, not loading.
type Logout struct{}

// UpdateUser merges Patch into the current user. Ignored unless
// Authenticated.
type UpdateUser struct {
	Patch models.UserPatch
}

// ClearError empties Error.
type ClearError struct{}

func (SetLoading) Name() string   { return "SET_LOADING" }
func (LoginSuccess) Name() string { return "LOGIN_SUCCESS" }
func (LoginError) Name() string   { return "LOGIN_ERROR" }
func (Logout) Name() string       { return "LOGOUT" }
func (UpdateUser) Name() string   { return "UPDATE_USER" }
func (ClearError) Name() string   { return "CLEAR_ERROR" }

func (SetLoading) isEvent()   {}
func (LoginSuccess) isEvent() {}
func (LoginError) isEvent()   {}
func (Logout) isEvent()       {}
func (UpdateUser) isEvent()   {}
func (ClearError) isEvent()   {}
