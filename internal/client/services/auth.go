// Package services contains application services for the client.
// This file defines the authentication service: startup restore, sign-in
// persistence, password login, logout, profile updates and the refresh
// dance around authenticated calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/session"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/state"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ErrNotAuthenticated is returned by calls that need a session when there
// is none.
var ErrNotAuthenticated = errors.New("not signed in")

// AuthService binds the backend, the session store and the auth state.
//
// Contract:
//   - Restore: one pass at startup; trusts a stored session without asking
//     the backend.
//   - SignIn: publishes a fresh session and mirrors it to the store.
//   - Fail: publishes a failed attempt; the message becomes AuthState.Error.
//   - SetLoading: toggles the loading flag only.
//   - Login: password login.
//   - Logout: always ends signed out locally, whatever the backend says.
//   - UpdateUser: saves profile changes on the backend, then locally.
//   - Refresh: exchanges the refresh token; an expired session logs out.
//   - Me: fetches the profile and merges it into the local user.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Restore(ctx context.Context) error
	SignIn(ctx context.Context, s *models.Session) error
	Fail(message string)
	SetLoading(loading bool)
	Login(ctx context.Context, identifier, secret string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error)
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

type authService struct {
	client  gateway.Client
	store   session.Store
	machine *state.Machine
	log     logging.Logger

	validate *validator.Validate

	// refreshMu serialises refreshes so a burst of 401s spends the
	// refresh token once.
	refreshMu sync.Mutex
}

// NewAuthService constructs an AuthService bound to the given backend,
// store and state machine.
func NewAuthService(client gateway.Client, store session.Store, machine *state.Machine, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		client:   client,
		store:    store,
		machine:  machine,
		log:      log.With("component", "auth_service"),
		validate: api.NewValidator(),
	}
}

// Restore loads the stored session and publishes it. A missing or corrupt
// session ends signed out; a corrupt one is also wiped.
func (a *authService) Restore(ctx context.Context) error {
	a.machine.Dispatch(state.SetLoading{Loading: true})

	s, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrCorruptSession):
		a.log.Warn(ctx, "discarding stored session", "error", err)
		if cerr := a.store.Clear(ctx); cerr != nil {
			a.log.Error(ctx, "failed to clear stored session", "error", cerr)
		}
		a.machine.Dispatch(state.Logout{})
		return nil
	case err != nil:
		a.machine.Dispatch(state.Logout{})
		return fmt.Errorf("restore session: %w", err)
	case !s.Valid():
		a.machine.Dispatch(state.Logout{})
		return nil
	}

	a.log.Info(ctx, "session restored", "user_id", s.User.ID)
	a.machine.Dispatch(state.LoginSuccess{User: *s.User, Token: *s.Token})
	return nil
}

// SignIn publishes s and saves it. The sign-in stands even when the save
// fails; the error is returned so the caller can warn that it will not
// survive a restart.
func (a *authService) SignIn(ctx context.Context, s *models.Session) error {
	if !s.Valid() {
		a.log.Error(ctx, "refusing incomplete session")
		a.machine.Dispatch(state.SetLoading{Loading: false})
		return session.ErrInvalidSession
	}

	a.machine.Dispatch(state.LoginSuccess{User: *s.User, Token: *s.Token})

	if err := a.store.Save(ctx, s); err != nil {
		a.log.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (a *authService) Fail(message string) {
	a.machine.Dispatch(state.LoginError{Message: message})
}

func (a *authService) SetLoading(loading bool) {
	a.machine.Dispatch(state.SetLoading{Loading: loading})
}

// Login authenticates with identifier and secret. Bad input is returned
// without touching the auth state.
func (a *authService) Login(ctx context.Context, identifier, secret string) error {
	if err := a.validate.Struct(api.LoginRequest{Identifier: identifier, Secret: secret}); err != nil {
		return fmt.Errorf("%w: %s", gateway.ErrValidation, api.Describe(err))
	}

	a.SetLoading(true)

	s, err := a.client.Login(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, gateway.ErrValidation) {
			a.SetLoading(false)
			return err
		}
		a.Fail(gateway.UserMessage(err))
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.SignIn(ctx, s); err != nil {
		a.log.Warn(ctx, "signed in without persistence", "error", err)
	}
	return nil
}

// Logout revokes the token on a best-effort basis, wipes the stored session
// and publishes the signed-out state. Only a failed wipe is reported.
func (a *authService) Logout(ctx context.Context) error {
	snap := a.machine.Snapshot()
	if snap.Token != nil {
		if err := a.client.Revoke(ctx, *snap.Token); err != nil {
			a.log.Warn(ctx, "revoke failed, logging out locally", "error", err)
		}
	}
	return a.logoutLocal(ctx)
}

func (a *authService) logoutLocal(ctx context.Context) error {
	err := a.store.Clear(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to clear stored session", "error", err)
		err = fmt.Errorf("clear session: %w", err)
	}
	a.machine.Dispatch(state.Logout{})
	return err
}

func (a *authService) UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var updated *models.User
	err := a.authorized(ctx, func(ctx context.Context, tok models.Token) error {
		var err error
		updated, err = a.client.UpdateProfile(ctx, tok, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.machine.Dispatch(state.UpdateUser{Patch: patch})
	a.persistCurrent(ctx)
	return updated, nil
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	var me *models.User
	err := a.authorized(ctx, func(ctx context.Context, tok models.Token) error {
		var err error
		me, err = a.client.Me(ctx, tok)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.machine.Dispatch(state.UpdateUser{Patch: models.UserPatch{
		Name:    &me.Name,
		Email:   &me.Email,
		Address: &me.Address,
		Pincode: &me.Pincode,
	}})
	a.persistCurrent(ctx)
	return me, nil
}

func (a *authService) Refresh(ctx context.Context) error {
	snap := a.machine.Snapshot()
	if snap.Token == nil {
		return ErrNotAuthenticated
	}
	return a.refreshFrom(ctx, *snap.Token)
}

// refreshFrom replaces stale with a new pair. When another caller already
// replaced it, nothing is sent.
func (a *authService) refreshFrom(ctx context.Context, stale models.Token) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	snap := a.machine.Snapshot()
	if !snap.IsAuthenticated {
		return ErrNotAuthenticated
	}
	if *snap.Token != stale {
		return nil
	}

	next, err := a.client.RefreshToken(ctx, stale)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			a.log.Info(ctx, "session expired, logging out")
			_ = a.logoutLocal(ctx)
		}
		return fmt.Errorf("refresh token: %w", err)
	}

	s := &models.Session{User: snap.User, Token: next}
	if err := a.SignIn(ctx, s); err != nil {
		a.log.Warn(ctx, "refreshed token not persisted", "error", err)
	}
	return nil
}

// authorized runs fn with the current access token. On ErrUnauthorized it
// refreshes once and retries.
func (a *authService) authorized(ctx context.Context, fn func(context.Context, models.Token) error) error {
	snap := a.machine.Snapshot()
	if snap.Token == nil {
		return ErrNotAuthenticated
	}

	err := fn(ctx, *snap.Token)
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}

	if rerr := a.refreshFrom(ctx, *snap.Token); rerr != nil {
		return rerr
	}

	snap = a.machine.Snapshot()
	if snap.Token == nil {
		return ErrNotAuthenticated
	}
	return fn(ctx, *snap.Token)
}

func (a *authService) persistCurrent(ctx context.Context) {
	s := a.machine.Snapshot().Session()
	if s == nil {
		return
	}
	if err := a.store.Save(ctx, s); err != nil {
		a.log.Error(ctx, "failed to persist session", "error", err)
	}
}
