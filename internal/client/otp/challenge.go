// Package otp drives one phone-number verification attempt: the resend
// countdown, code entry, submission and resend.
package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/jonboulle/clockwork"
)

// CodeLength is the number of digits in a code.
const CodeLength = 6

var (
	ErrBusy            = errors.New("another request is in progress")
	ErrResendNotReady  = errors.New("resend is not available yet")
	ErrChallengeClosed = errors.New("challenge is closed")
)

type Phase int

const (
	PhaseCounting Phase = iota
	PhaseResendReady
	PhaseSubmitting
	PhaseVerified
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseCounting:
		return "counting"
	case PhaseResendReady:
		return "resend_ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseVerified:
		return "verified"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Snapshot is the observable state of a challenge.
type Snapshot struct {
	Phone            string
	Code             string
	SecondsRemaining int
	ResendEnabled    bool
	Phase            Phase
}

// Backend is the part of the auth gateway a challenge calls.
type Backend interface {
	RequestOTP(ctx context.Context, phone string, purpose api.Purpose) (*gateway.OTPResult, error)
	VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error)
}

// Authenticator receives the outcome of a challenge. services.AuthService
// satisfies it.
type Authenticator interface {
	SetLoading(loading bool)
	Fail(message string)
	SignIn(ctx context.Context, s *models.Session) error
}

// Challenge is one open verification attempt. All methods are safe for
// concurrent use; at most one backend call is outstanding at a time.
type Challenge struct {
	backend  Backend
	auth     Authenticator
	loading  *loadingGate
	clock    clockwork.Clock
	cooldown int
	log      logging.Logger

	phone   string
	purpose api.Purpose
	devCode string

	mu        sync.Mutex
	code      string
	remaining int
	phase     Phase
	busy      bool
	closed    bool
	cancel    context.CancelFunc
	ticket    uint64
	gen       uint64
	stop      chan struct{}
	subs      []subscription
	nextSub   uint64
	pending   []Snapshot
	notifying bool
}

type subscription struct {
	id uint64
	fn func(Snapshot)
}

func newChallenge(backend Backend, auth Authenticator, loading *loadingGate, clock clockwork.Clock, cooldown time.Duration, log logging.Logger, phone string, purpose api.Purpose, devCode string) *Challenge {
	c := &Challenge{
		backend:  backend,
		auth:     auth,
		loading:  loading,
		clock:    clock,
		cooldown: int(cooldown / time.Second),
		log:      log,
		phone:    phone,
		purpose:  purpose,
		devCode:  devCode,
	}
	c.mu.Lock()
	c.restartLocked()
	c.mu.Unlock()
	return c
}

// Snapshot returns the current state.
func (c *Challenge) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// DevCode returns the code echoed by a development backend for the latest
// request, or "".
func (c *Challenge) DevCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devCode
}

// Subscribe registers fn for every change. The returned function removes it.
func (c *Challenge) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Input stores the digits of raw, at most CodeLength of them, as the
// entered code and returns it.
func (c *Challenge) Input(raw string) string {
	digits := make([]byte, 0, CodeLength)
	for i := 0; i < len(raw) && len(digits) < CodeLength; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	c.mu.Lock()
	if c.closed || c.phase == PhaseVerified {
		code := c.code
		c.mu.Unlock()
		return code
	}
	c.code = string(digits)
	c.emitLocked()
	c.mu.Unlock()

	c.flush()
	return string(digits)
}

// Verify submits code. A malformed code fails with gateway.ErrValidation
// before any state changes. On success the session is signed in and the
// challenge is finished; on failure the error is published to the auth
// state and the challenge goes back to counting or resend-ready.
func (c *Challenge) Verify(ctx context.Context, code string) error {
	if !validCode(code) {
		return fmt.Errorf("%w: code must be %d digits", gateway.ErrValidation, CodeLength)
	}

	callCtx, err := c.begin(ctx, PhaseSubmitting)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.code = code
	c.emitLocked()
	c.mu.Unlock()
	c.flush()

	ticket := c.holdLoading()
	s, err := c.backend.VerifyOTP(callCtx, c.phone, code)

	c.mu.Lock()
	c.endCallLocked()
	if c.closed {
		c.mu.Unlock()
		c.loading.release(ticket)
		c.log.Debug(ctx, "discarding verify result of closed challenge")
		return ErrChallengeClosed
	}

	if err != nil {
		c.phase = c.timerPhaseLocked()
		c.emitLocked()
		c.mu.Unlock()
		c.flush()

		c.log.Info(ctx, "otp verification failed", "phone", common.MaskPhone(c.phone), "error", err)
		c.loading.settle(ticket)
		c.auth.Fail(gateway.UserMessage(err))
		return err
	}

	c.phase = PhaseVerified
	c.stopTickerLocked()
	c.emitLocked()
	c.mu.Unlock()
	c.flush()

	c.log.Info(ctx, "otp verified", "phone", common.MaskPhone(c.phone))
	c.loading.settle(ticket)
	if err := c.auth.SignIn(ctx, s); err != nil {
		c.log.Warn(ctx, "session not persisted", "error", err)
	}
	return nil
}

// Resend asks for a new code. Only allowed once the countdown has run out.
// Success restarts the countdown; failure leaves resend enabled.
func (c *Challenge) Resend(ctx context.Context) error {
	callCtx, err := c.begin(ctx, PhaseResendReady)
	if err != nil {
		return err
	}

	ticket := c.holdLoading()
	res, err := c.backend.RequestOTP(callCtx, c.phone, c.purpose)

	c.mu.Lock()
	c.endCallLocked()
	if c.closed {
		c.mu.Unlock()
		c.loading.release(ticket)
		c.log.Debug(ctx, "discarding resend result of closed challenge")
		return ErrChallengeClosed
	}

	if err != nil {
		c.mu.Unlock()
		c.log.Info(ctx, "otp resend failed", "phone", common.MaskPhone(c.phone), "error", err)
		c.loading.settle(ticket)
		c.auth.Fail(gateway.UserMessage(err))
		return err
	}

	c.code = ""
	c.devCode = ""
	if res != nil {
		c.devCode = res.DevCode
	}
	c.restartLocked()
	c.emitLocked()
	c.mu.Unlock()
	c.flush()

	c.log.Info(ctx, "otp resent", "phone", common.MaskPhone(c.phone))
	c.loading.release(ticket)
	return nil
}

// Close stops the countdown and abandons any outstanding call. The call's
// hold on the loading flag is released here; its result, if it arrives
// later, touches nothing outside the challenge. Close is idempotent.
func (c *Challenge) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	ticket := c.ticket
	c.ticket = 0
	if c.phase != PhaseVerified {
		c.phase = PhaseClosed
	}
	c.stopTickerLocked()
	if c.cancel != nil {
		c.cancel()
	}
	c.emitLocked()
	c.mu.Unlock()

	c.flush()

	c.mu.Lock()
	c.subs = nil
	c.mu.Unlock()

	c.loading.release(ticket)
}

// holdLoading raises the loading flag for the outstanding call and records
// the ticket so Close can release it. When Close got in first, the ticket
// is released straight away.
func (c *Challenge) holdLoading() uint64 {
	ticket := c.loading.acquire()
	c.mu.Lock()
	closed := c.closed
	if !closed {
		c.ticket = ticket
	}
	c.mu.Unlock()

	if closed {
		c.loading.release(ticket)
	}
	return ticket
}

// begin claims the single call slot. For PhaseSubmitting it moves the
// phase; for PhaseResendReady it requires the countdown to be over.
func (c *Challenge) begin(ctx context.Context, next Phase) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed, c.phase == PhaseVerified:
		return nil, ErrChallengeClosed
	case c.busy:
		return nil, ErrBusy
	case next == PhaseResendReady && c.phase != PhaseResendReady:
		return nil, ErrResendNotReady
	}

	callCtx, cancel := context.WithCancel(ctx)
	c.busy = true
	c.cancel = cancel
	if next == PhaseSubmitting {
		c.phase = PhaseSubmitting
	}
	return callCtx, nil
}

func (c *Challenge) endCallLocked() {
	c.ticket = 0
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.busy = false
}

func (c *Challenge) timerPhaseLocked() Phase {
	if c.remaining > 0 {
		return PhaseCounting
	}
	return PhaseResendReady
}

// restartLocked starts a fresh countdown. The ticker is created before
// returning so the first tick is never missed.
func (c *Challenge) restartLocked() {
	c.stopTickerLocked()

	c.remaining = c.cooldown
	c.phase = c.timerPhaseLocked()
	if c.remaining <= 0 {
		return
	}

	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	ticker := c.clock.NewTicker(time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				if !c.tick(gen) {
					return
				}
			}
		}
	}()
}

func (c *Challenge) stopTickerLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.gen++
}

// tick counts one second down. It reports whether the countdown goes on.
func (c *Challenge) tick(gen uint64) bool {
	c.mu.Lock()
	if c.gen != gen || c.closed {
		c.mu.Unlock()
		return false
	}

	c.remaining--
	more := c.remaining > 0
	if !more {
		c.remaining = 0
		if c.phase == PhaseCounting {
			c.phase = PhaseResendReady
		}
		c.stop = nil
		c.gen++
	}
	c.emitLocked()
	c.mu.Unlock()

	c.flush()
	return more
}

func (c *Challenge) snapshotLocked() Snapshot {
	return Snapshot{
		Phone:            c.phone,
		Code:             c.code,
		SecondsRemaining: c.remaining,
		ResendEnabled:    c.remaining == 0 && !c.closed && c.phase != PhaseVerified,
		Phase:            c.phase,
	}
}

func (c *Challenge) emitLocked() {
	c.pending = append(c.pending, c.snapshotLocked())
}

// flush delivers queued snapshots in order, outside the lock. Only one
// goroutine delivers at a time.
func (c *Challenge) flush() {
	c.mu.Lock()
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true

	for len(c.pending) > 0 {
		snap := c.pending[0]
		c.pending = c.pending[1:]
		subs := make([]subscription, len(c.subs))
		copy(subs, c.subs)
		c.mu.Unlock()

		for _, s := range subs {
			s.fn(snap)
		}

		c.mu.Lock()
	}
	c.notifying = false
	c.mu.Unlock()
}

func validCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
