package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/localdb"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/services"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/session"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/state"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "9876543210"

// ---- fake backend ----

type fakeBackend struct {
	mu          sync.Mutex
	requestErr  error
	requestGate chan struct{}
	requests    int
	verifyCalls int
	verify      func(ctx context.Context, code string) (*models.Session, error)
}

func (f *fakeBackend) RequestOTP(ctx context.Context, phone string, purpose api.Purpose) (*gateway.OTPResult, error) {
	f.mu.Lock()
	f.requests++
	gate, err := f.requestGate, f.requestErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &gateway.OTPResult{Success: true, Message: "sent"}, nil
}

// block makes later RequestOTP calls wait for gate, whatever their context says.
func (f *fakeBackend) block(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestGate = gate
}

func (f *fakeBackend) VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error) {
	f.mu.Lock()
	f.verifyCalls++
	fn := f.verify
	f.mu.Unlock()
	return fn(ctx, code)
}

func (f *fakeBackend) setRequestErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestErr = err
}

func (f *fakeBackend) counts() (requests, verifies int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.verifyCalls
}

func signedSession() *models.Session {
	return &models.Session{
		User:  &models.User{ID: "u1", Phone: phone},
		Token: &models.Token{Access: "acc", Refresh: "ref"},
	}
}

func acceptOnly(good string) func(context.Context, string) (*models.Session, error) {
	return func(_ context.Context, code string) (*models.Session, error) {
		if code != good {
			return nil, &gateway.Error{Kind: gateway.ErrInvalidCode, Op: "verify otp", Status: 400, Message: "invalid OTP code"}
		}
		return signedSession(), nil
	}
}

// ---- fixture ----

type env struct {
	clock   *clockwork.FakeClock
	backend *fakeBackend
	machine *state.Machine
	store   *session.SQLStore
	ctl     *Controller
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := localdb.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := session.NewSQLStore(ctx, db, []byte("device-secret"))
	require.NoError(t, err)

	e := &env{
		clock:   clockwork.NewFakeClock(),
		backend: &fakeBackend{verify: acceptOnly("123456")},
		machine: state.New(logging.Nop()),
		store:   store,
	}
	auth := services.NewAuthService(nil, store, e.machine, logging.Nop())
	e.ctl = NewController(e.backend, auth, WithClock(e.clock))
	t.Cleanup(e.ctl.Close)

	require.NoError(t, auth.Restore(ctx))
	return e
}

func (e *env) open(t *testing.T) *Challenge {
	t.Helper()
	ch, err := e.ctl.Open(context.Background(), phone, api.PurposeLogin)
	require.NoError(t, err)
	return ch
}

// tick advances the clock one second at a time, waiting for each tick to
// land before sending the next.
func (e *env) tick(t *testing.T, ch *Challenge, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		want := ch.Snapshot().SecondsRemaining - 1
		e.clock.Advance(time.Second)
		require.Eventually(t, func() bool {
			return ch.Snapshot().SecondsRemaining == want
		}, time.Second, time.Millisecond)
	}
}

// stillAt advances the clock and checks the countdown does not move.
func (e *env) stillAt(t *testing.T, ch *Challenge, want int) {
	t.Helper()
	e.clock.Advance(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, want, ch.Snapshot().SecondsRemaining)
}

func waitPhase(t *testing.T, ch *Challenge, p Phase) {
	t.Helper()
	require.Eventually(t, func() bool { return ch.Snapshot().Phase == p }, time.Second, time.Millisecond)
}

// ---- TESTS ----

func TestOpen_StartsCountdown(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	assert.Equal(t, Snapshot{Phone: phone, SecondsRemaining: 60, Phase: PhaseCounting}, ch.Snapshot())
	assert.False(t, e.machine.Snapshot().IsLoading)
	assert.Same(t, ch, e.ctl.Current())
}

func TestCountdown_SixtyTicksEnableResend(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	e.tick(t, ch, 59)
	snap := ch.Snapshot()
	assert.Equal(t, 1, snap.SecondsRemaining)
	assert.Equal(t, PhaseCounting, snap.Phase)
	assert.False(t, snap.ResendEnabled)
	require.ErrorIs(t, ch.Resend(context.Background()), ErrResendNotReady)

	e.tick(t, ch, 1)
	snap = ch.Snapshot()
	assert.Equal(t, 0, snap.SecondsRemaining)
	assert.Equal(t, PhaseResendReady, snap.Phase)
	assert.True(t, snap.ResendEnabled)

	e.stillAt(t, ch, 0)
}

func TestOpen_InvalidInputNeverReachesNetworkOrState(t *testing.T) {
	e := newEnv(t)
	before := e.machine.Snapshot()

	for _, p := range []string{"", "12345", "98765432", "0876543210", "98765-4321"} {
		_, err := e.ctl.Open(context.Background(), p, api.PurposeLogin)
		require.ErrorIs(t, err, gateway.ErrValidation, p)
	}
	_, err := e.ctl.Open(context.Background(), phone, "RESET")
	require.ErrorIs(t, err, gateway.ErrValidation)

	requests, _ := e.backend.counts()
	assert.Zero(t, requests)
	assert.Equal(t, before, e.machine.Snapshot())
	assert.Nil(t, e.ctl.Current())
}

func TestOpen_BackendErrorReachesState(t *testing.T) {
	e := newEnv(t)
	e.backend.setRequestErr(&gateway.Error{Kind: gateway.ErrRateLimited, Op: "request otp", Status: 429, Message: "slow down"})

	_, err := e.ctl.Open(context.Background(), phone, api.PurposeLogin)
	require.ErrorIs(t, err, gateway.ErrRateLimited)

	got := e.machine.Snapshot()
	assert.Equal(t, "slow down", got.Error)
	assert.False(t, got.IsLoading)
	assert.Nil(t, e.ctl.Current())
}

func TestVerify_InvalidCodeReturnsToCounting(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	assert.Equal(t, 60, ch.Snapshot().SecondsRemaining)

	err := ch.Verify(context.Background(), "654321")
	require.ErrorIs(t, err, gateway.ErrInvalidCode)

	snap := ch.Snapshot()
	assert.Equal(t, PhaseCounting, snap.Phase)

	auth := e.machine.Snapshot()
	assert.Equal(t, "invalid OTP code", auth.Error)
	assert.False(t, auth.IsLoading)
	assert.False(t, auth.IsAuthenticated)

	// the countdown keeps running
	e.tick(t, ch, 2)
	assert.Equal(t, snap.SecondsRemaining-2, ch.Snapshot().SecondsRemaining)
}

func TestVerify_FailureAfterCountdownGoesToResendReady(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	e.tick(t, ch, 60)

	require.ErrorIs(t, ch.Verify(context.Background(), "000000"), gateway.ErrInvalidCode)
	assert.Equal(t, PhaseResendReady, ch.Snapshot().Phase)
}

func TestVerify_MalformedCodeIsLocal(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	var events []state.AuthState
	unsubscribe := e.machine.Subscribe(func(s state.AuthState) { events = append(events, s) })
	defer unsubscribe()

	for _, code := range []string{"", "12345", "1234567", "12a456", "12 456"} {
		require.ErrorIs(t, ch.Verify(context.Background(), code), gateway.ErrValidation, code)
	}

	_, verifies := e.backend.counts()
	assert.Zero(t, verifies)
	assert.Empty(t, events, "no SET_LOADING, no LOGIN_ERROR")
	assert.Equal(t, PhaseCounting, ch.Snapshot().Phase)
}

func TestVerify_SuccessSignsInAndPersists(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	e.tick(t, ch, 3)

	require.NoError(t, ch.Verify(context.Background(), "123456"))

	snap := ch.Snapshot()
	assert.Equal(t, PhaseVerified, snap.Phase)
	assert.False(t, snap.ResendEnabled)

	auth := e.machine.Snapshot()
	assert.True(t, auth.IsAuthenticated)
	assert.False(t, auth.IsLoading)
	assert.Empty(t, auth.Error)

	stored, err := e.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, signedSession(), stored)

	e.stillAt(t, ch, 57)
	require.ErrorIs(t, ch.Verify(context.Background(), "123456"), ErrChallengeClosed)
	require.ErrorIs(t, ch.Resend(context.Background()), ErrChallengeClosed)
}

func TestVerify_SecondCallWhileSubmittingIsBusy(t *testing.T) {
	e := newEnv(t)
	release := make(chan struct{})
	e.backend.verify = func(ctx context.Context, code string) (*models.Session, error) {
		<-release
		return signedSession(), nil
	}
	ch := e.open(t)

	done := make(chan error, 1)
	go func() { done <- ch.Verify(context.Background(), "123456") }()
	waitPhase(t, ch, PhaseSubmitting)

	require.Eventually(t, func() bool { return e.machine.Snapshot().IsLoading }, time.Second, time.Millisecond)
	require.ErrorIs(t, ch.Verify(context.Background(), "123456"), ErrBusy)
	require.ErrorIs(t, ch.Resend(context.Background()), ErrBusy)

	// the countdown runs while submitting
	e.tick(t, ch, 2)
	assert.Equal(t, PhaseSubmitting, ch.Snapshot().Phase)

	close(release)
	require.NoError(t, <-done)

	_, verifies := e.backend.counts()
	assert.Equal(t, 1, verifies)
	assert.Equal(t, PhaseVerified, ch.Snapshot().Phase)
}

func TestClose_DiscardsLateResult(t *testing.T) {
	e := newEnv(t)
	release := make(chan struct{})
	e.backend.verify = func(ctx context.Context, code string) (*models.Session, error) {
		<-release // ignores ctx on purpose
		return signedSession(), nil
	}
	ch := e.open(t)

	done := make(chan error, 1)
	go func() { done <- ch.Verify(context.Background(), "123456") }()
	waitPhase(t, ch, PhaseSubmitting)

	ch.Close()
	close(release)
	require.ErrorIs(t, <-done, ErrChallengeClosed)

	auth := e.machine.Snapshot()
	assert.False(t, auth.IsAuthenticated)
	assert.False(t, auth.IsLoading)

	stored, err := e.store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, PhaseClosed, ch.Snapshot().Phase)
}

func TestClose_CancelsInFlightCall(t *testing.T) {
	e := newEnv(t)
	e.backend.verify = func(ctx context.Context, code string) (*models.Session, error) {
		<-ctx.Done()
		return nil, &gateway.Error{Kind: gateway.ErrNetwork, Op: "verify otp", Err: ctx.Err()}
	}
	ch := e.open(t)

	done := make(chan error, 1)
	go func() { done <- ch.Verify(context.Background(), "123456") }()
	waitPhase(t, ch, PhaseSubmitting)

	ch.Close()
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrChallengeClosed)
	case <-time.After(time.Second):
		t.Fatal("verify did not return after Close")
	}
	assert.Empty(t, e.machine.Snapshot().Error)
	e.stillAt(t, ch, 60)
}

func TestClose_LateResultKeepsNewerChallengeLoading(t *testing.T) {
	e := newEnv(t)
	releaseOld := make(chan struct{})
	releaseNew := make(chan struct{})
	e.backend.verify = func(ctx context.Context, code string) (*models.Session, error) {
		if code == "111111" {
			<-releaseOld // ignores ctx
			return nil, &gateway.Error{Kind: gateway.ErrInvalidCode, Op: "verify otp", Status: 400}
		}
		<-releaseNew
		return signedSession(), nil
	}

	old := e.open(t)
	oldDone := make(chan error, 1)
	go func() { oldDone <- old.Verify(context.Background(), "111111") }()
	waitPhase(t, old, PhaseSubmitting)
	require.Eventually(t, func() bool { return e.machine.Snapshot().IsLoading }, time.Second, time.Millisecond)

	fresh := e.open(t)
	assert.Equal(t, PhaseClosed, old.Snapshot().Phase)
	assert.False(t, e.machine.Snapshot().IsLoading)

	freshDone := make(chan error, 1)
	go func() { freshDone <- fresh.Verify(context.Background(), "222222") }()
	waitPhase(t, fresh, PhaseSubmitting)
	require.Eventually(t, func() bool { return e.machine.Snapshot().IsLoading }, time.Second, time.Millisecond)

	close(releaseOld)
	require.ErrorIs(t, <-oldDone, ErrChallengeClosed)

	auth := e.machine.Snapshot()
	assert.True(t, auth.IsLoading, "old result must leave the newer call's loading flag alone")
	assert.Empty(t, auth.Error)

	close(releaseNew)
	require.NoError(t, <-freshDone)
	auth = e.machine.Snapshot()
	assert.True(t, auth.IsAuthenticated)
	assert.False(t, auth.IsLoading)
}

func TestClose_LateResendResultIsDropped(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	e.tick(t, ch, 60)

	gate := make(chan struct{})
	e.backend.block(gate)

	done := make(chan error, 1)
	go func() { done <- ch.Resend(context.Background()) }()
	require.Eventually(t, func() bool { return e.machine.Snapshot().IsLoading }, time.Second, time.Millisecond)

	ch.Close()
	require.Eventually(t, func() bool { return !e.machine.Snapshot().IsLoading }, time.Second, time.Millisecond)

	close(gate)
	require.ErrorIs(t, <-done, ErrChallengeClosed)
	assert.False(t, e.machine.Snapshot().IsLoading)
	assert.Equal(t, PhaseClosed, ch.Snapshot().Phase)
}

func TestResend_RestartsCountdown(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	ch.Input("111")
	e.tick(t, ch, 60)

	require.NoError(t, ch.Resend(context.Background()))

	snap := ch.Snapshot()
	assert.Equal(t, 60, snap.SecondsRemaining)
	assert.Equal(t, PhaseCounting, snap.Phase)
	assert.False(t, snap.ResendEnabled)
	assert.Empty(t, snap.Code)
	assert.False(t, e.machine.Snapshot().IsLoading)

	requests, _ := e.backend.counts()
	assert.Equal(t, 2, requests)

	e.tick(t, ch, 1)
	assert.Equal(t, 59, ch.Snapshot().SecondsRemaining)
}

func TestResend_IsUnbounded(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	for i := 0; i < 3; i++ {
		e.tick(t, ch, 60)
		require.NoError(t, ch.Resend(context.Background()))
	}
	requests, _ := e.backend.counts()
	assert.Equal(t, 4, requests)
}

func TestResend_FailureStaysReady(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)
	e.tick(t, ch, 60)

	e.backend.setRequestErr(&gateway.Error{Kind: gateway.ErrNetwork, Op: "request otp"})
	require.ErrorIs(t, ch.Resend(context.Background()), gateway.ErrNetwork)

	snap := ch.Snapshot()
	assert.Equal(t, PhaseResendReady, snap.Phase)
	assert.True(t, snap.ResendEnabled)
	assert.False(t, e.machine.Snapshot().IsLoading)
	assert.Equal(t, "network unavailable", e.machine.Snapshot().Error)
}

func TestOpen_ClosesPreviousChallenge(t *testing.T) {
	e := newEnv(t)
	first := e.open(t)
	second := e.open(t)

	assert.Equal(t, PhaseClosed, first.Snapshot().Phase)
	assert.False(t, first.Snapshot().ResendEnabled)
	assert.Same(t, second, e.ctl.Current())

	e.tick(t, second, 1)
	assert.Equal(t, 60, first.Snapshot().SecondsRemaining)
	require.ErrorIs(t, first.Verify(context.Background(), "123456"), ErrChallengeClosed)
}

func TestInput_KeepsDigitsOnly(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	assert.Equal(t, "987654", ch.Input("98a7-65 4321"))
	assert.Equal(t, "987654", ch.Snapshot().Code)
	assert.Equal(t, "", ch.Input("abc"))
}

func TestSubscribe_ReceivesCountdown(t *testing.T) {
	e := newEnv(t)
	ch := e.open(t)

	var mu sync.Mutex
	var seen []int
	unsubscribe := ch.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.SecondsRemaining)
	})

	e.tick(t, ch, 3)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, time.Millisecond)
	unsubscribe()
	e.tick(t, ch, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{59, 58, 57}, seen)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "resend_ready", PhaseResendReady.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}
