// Package client wires and runs the terminal client: configuration, the
// sealed local session store, the HTTP gateway, the auth state machine, the
// OTP controller and the REPL on top of them.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/cli"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/config"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/localdb"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/services"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/session"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/state"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/filex"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server"
	srvconfig "github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/config"
	"github.com/google/uuid"
)

type App struct {
	config *config.Config
	logger *logging.ZapLogger
	db     *sql.DB
	dev    *server.App
	cli    *cli.App
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{Level: c.LogLevel, Dev: c.LogDev})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	if c.DevServerAddr != "" {
		dev, baseURL, err := newDevServer(c)
		if err != nil {
			return nil, err
		}
		app.dev = dev
		c.APIBaseURL = baseURL
	}

	dbPath, err := filex.EnsureParentDir(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("session db dir: %w", err)
	}

	db, err := localdb.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	app.db = db

	store, err := session.NewSQLStore(ctx, db, []byte(c.DeviceSecret))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	deviceID, err := store.DeviceID(ctx, uuid.NewString)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := gateway.NewHTTPClient(c.APIBaseURL,
		gateway.WithTimeout(c.RequestTimeout),
		gateway.WithDeviceID(deviceID),
		gateway.WithLogger(logger),
	)

	machine := state.New(logger)
	as := services.NewAuthService(api, store, machine, logger)
	ctl := otp.NewController(api, as, otp.WithCooldown(c.ResendCooldown), otp.WithLogger(logger))

	app.cli = cli.NewApp(as, ctl, machine, os.Stdin, os.Stdout, logger)
	return app, nil
}

// newDevServer builds an in-process development backend listening on
// c.DevServerAddr and returns the base URL that reaches it.
func newDevServer(c *config.Config) (*server.App, string, error) {
	host, port, err := net.SplitHostPort(c.DevServerAddr)
	if err != nil {
		return nil, "", fmt.Errorf("dev server addr: %w", err)
	}
	if host == "" {
		host = "127.0.0.1"
	}

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, "", err
	}

	sc := &srvconfig.Config{}
	sc.LoadDefaults()
	sc.Addr = net.JoinHostPort(host, port)
	sc.SecretKey = secret
	sc.LogLevel = c.LogLevel
	sc.LogDev = c.LogDev

	dev, err := server.NewApp(sc)
	if err != nil {
		return nil, "", err
	}
	return dev, "http://" + sc.Addr, nil
}

// Run starts the development backend when configured and blocks in the
// REPL until the user exits or ctx is done.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = app.logger.Sync() }()
	defer func() { _ = app.db.Close() }()

	if app.dev != nil {
		go app.dev.Serve(ctx)
	}

	app.cli.Root(ctx)
}
