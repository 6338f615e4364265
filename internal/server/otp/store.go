// Package otp keeps the one-time codes issued by the development backend.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const CodeLength = 6

var (
	ErrCodeNotFound    = errors.New("OTP code not found for this phone number")
	ErrCodeExpired     = errors.New("OTP code has expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrCodeMismatch    = errors.New("invalid OTP code")
	ErrResendTooSoon   = errors.New("please wait before requesting another code")
)

type entry struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
	attempts  int
}

// Store holds at most one live code per phone number.
type Store struct {
	mu          sync.Mutex
	codes       map[string]*entry
	clock       clockwork.Clock
	ttl         time.Duration
	maxAttempts int
	minInterval time.Duration
	generate    func() (string, error)
}

type Option func(*Store)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithGenerator replaces the random code source, for tests.
func WithGenerator(fn func() (string, error)) Option {
	return func(s *Store) { s.generate = fn }
}

func NewStore(ttl time.Duration, maxAttempts int, minInterval time.Duration, opts ...Option) *Store {
	s := &Store{
		codes:       make(map[string]*entry),
		clock:       clockwork.NewRealClock(),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		minInterval: minInterval,
		generate:    randomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate issues a fresh code for phone, replacing any previous one.
// A second request inside the resend interval fails with ErrResendTooSoon.
func (s *Store) Generate(phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if prev, ok := s.codes[phone]; ok && now.Sub(prev.issuedAt) < s.minInterval {
		return "", ErrResendTooSoon
	}

	code, err := s.generate()
	if err != nil {
		return "", err
	}

	s.codes[phone] = &entry{code: code, issuedAt: now, expiresAt: now.Add(s.ttl)}
	return code, nil
}

// Verify consumes the code for phone when it matches.
func (s *Store) Verify(phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[phone]
	if !ok {
		return ErrCodeNotFound
	}

	if s.clock.Now().After(e.expiresAt) {
		delete(s.codes, phone)
		return ErrCodeExpired
	}

	if e.attempts >= s.maxAttempts {
		delete(s.codes, phone)
		return ErrTooManyAttempts
	}

	if e.code != code {
		e.attempts++
		return ErrCodeMismatch
	}

	delete(s.codes, phone)
	return nil
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// RunCleanup drops expired codes every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.purge()
		}
	}
}

func (s *Store) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for phone, e := range s.codes {
		if now.After(e.expiresAt) {
			delete(s.codes, phone)
		}
	}
}

func randomCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, CodeLength)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
