// Package server wires and runs the development auth backend: an in-memory
// user and OTP store behind the HTTP API the client talks to.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/config"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/refreshtokens"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/rest"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/users"
	"github.com/jonboulle/clockwork"
)

const otpCleanupInterval = time.Minute

type App struct {
	config      *config.Config
	logger      *logging.ZapLogger
	codes       *otp.Store
	userService *users.Service
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{Level: c.LogLevel, Dev: c.LogDev})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	clock := clockwork.NewRealClock()

	repo, err := users.NewMemoryRepository(1, clock)
	if err != nil {
		return nil, fmt.Errorf("user repository init error: %w", err)
	}

	codes := otp.NewStore(c.OTPValidityDuration, c.OTPMaxAttempts, c.OTPResendInterval, otp.WithClock(clock))

	us, err := users.NewService(repo, refreshtokens.NewMemoryRepository(clock), codes, clock, c)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, codes: codes, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.Addr, app.logger, app.userService, app.config.ExposeOTP)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until ctx is done.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)
	app.Serve(ctx)
}

// Serve runs the HTTP listener and the OTP cleanup until ctx is done. It
// installs no signal handlers, so it can run inside another process.
func (app *App) Serve(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer func() { _ = app.logger.Sync() }()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr, "expose_otp", app.config.ExposeOTP)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.codes.RunCleanup(ctx, otpCleanupInterval)
	}()

	wg.Wait()
}
