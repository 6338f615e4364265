// Package rest exposes the development backend over HTTP/JSON.
package rest

import (
	"context"
	"net"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	address   string
	users     UserService
	logger    logging.Logger
	validate  *validator.Validate
	exposeOTP bool
	app       *fiber.App
}

func NewServer(a string, l logging.Logger, us UserService, exposeOTP bool) *Server {
	s := &Server{
		address:   a,
		logger:    l.With("module", "rest_server"),
		users:     us,
		validate:  api.NewValidator(),
		exposeOTP: exposeOTP,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(s.logRequests)

	app.Post(api.RouteSendOTP, s.SendOTP)
	app.Post(api.RouteVerifyOTP, s.VerifyOTP)
	app.Post(api.RouteRefresh, s.RefreshToken)
	app.Post(api.RouteLogin, s.Login)
	app.Post(api.RouteLogout, s.requireAccessToken, s.Logout)
	app.Get(api.RouteMe, s.requireAccessToken, s.GetProfile)
	app.Patch(api.RouteMe, s.requireAccessToken, s.UpdateProfile)

	s.app = app
	return s
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = s.app.Shutdown()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())

	return s.app.Listener(ln)
}
