package cli

import (
	"bufio"
	"io"
	"sync"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/services"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/state"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
)

type App struct {
	authService services.AuthService
	otp         *otp.Controller
	machine     *state.Machine
	log         logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// unwatch detaches the resend notice from the current challenge.
	mu      sync.Mutex
	unwatch func()
}

// NewApp builds the terminal client over already wired services. Commands
// read follow-up input from in and print to out.
func NewApp(as services.AuthService, ctl *otp.Controller, machine *state.Machine, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		authService: as,
		otp:         ctl,
		machine:     machine,
		log:         log.With("component", "cli"),
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.machine.Snapshot().IsAuthenticated
}
