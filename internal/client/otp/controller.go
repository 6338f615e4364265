package otp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
)

// DefaultCooldown is how long the user waits before a resend is offered.
const DefaultCooldown = 60 * time.Second

// Controller opens challenges. At most one challenge is open; opening a
// new one closes the previous.
type Controller struct {
	backend  Backend
	auth     Authenticator
	loading  *loadingGate
	clock    clockwork.Clock
	cooldown time.Duration
	log      logging.Logger
	validate *validator.Validate

	mu      sync.Mutex
	current *Challenge
}

type Option func(*Controller)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithCooldown overrides DefaultCooldown. It is rounded down to seconds.
func WithCooldown(d time.Duration) Option {
	return func(ctl *Controller) { ctl.cooldown = d }
}

func WithLogger(l logging.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

func NewController(backend Backend, auth Authenticator, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		auth:     auth,
		loading:  newLoadingGate(auth),
		clock:    clockwork.NewRealClock(),
		cooldown: DefaultCooldown,
		log:      logging.Nop(),
		validate: api.NewValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "otp")
	return c
}

// Open requests a code for phone and, once the backend accepts, returns
// the new challenge counting down. Malformed input fails with
// gateway.ErrValidation and leaves the auth state alone.
func (c *Controller) Open(ctx context.Context, phone string, purpose api.Purpose) (*Challenge, error) {
	if err := c.validate.Struct(api.SendOTPRequest{Phone: phone, Purpose: purpose}); err != nil {
		return nil, fmt.Errorf("%w: %s", gateway.ErrValidation, api.Describe(err))
	}

	ticket := c.loading.acquire()
	res, err := c.backend.RequestOTP(ctx, phone, purpose)
	if err != nil {
		c.log.Info(ctx, "otp request failed", "phone", common.MaskPhone(phone), "error", err)
		c.loading.settle(ticket)
		c.auth.Fail(gateway.UserMessage(err))
		return nil, err
	}
	c.loading.release(ticket)

	var devCode string
	if res != nil {
		devCode = res.DevCode
	}
	ch := newChallenge(c.backend, c.auth, c.loading, c.clock, c.cooldown, c.log, phone, purpose, devCode)

	c.mu.Lock()
	prev := c.current
	c.current = ch
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	c.log.Info(ctx, "otp challenge opened", "phone", common.MaskPhone(phone), "purpose", purpose)
	return ch, nil
}

// Current returns the open challenge, or nil.
func (c *Controller) Current() *Challenge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close closes the open challenge, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	ch := c.current
	c.current = nil
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
}
