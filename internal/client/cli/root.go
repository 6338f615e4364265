package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/state"
)

func (a *App) getStatus() string {
	st := a.machine.Snapshot()

	var parts []string
	switch {
	case st.IsAuthenticated:
		parts = append(parts, displayName(st.User))
	case st.Status == state.StatusUnknown:
		parts = append(parts, "starting")
	}

	if ch := a.otp.Current(); ch != nil {
		snap := ch.Snapshot()
		if snap.Phase == otp.PhaseCounting {
			parts = append(parts, fmt.Sprintf("otp %ds", snap.SecondsRemaining))
		} else if snap.ResendEnabled {
			parts = append(parts, "otp resend")
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// Root restores the stored session and runs the REPL until the user exits
// or ctx is done.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Dudhiya (type 'help' for commands)")

	unsubscribe := a.machine.Subscribe(a.onAuthState())
	defer unsubscribe()
	defer a.otp.Close()
	defer a.unwatchChallenge()

	if err := a.authService.Restore(ctx); err != nil {
		a.log.Error(ctx, "session restore failed", "error", err)
	}
	if u := a.machine.Snapshot().User; u != nil {
		if u.ProfileComplete() {
			fmt.Fprintf(a.out, "Welcome back, %s\n", displayName(u))
		} else {
			a.completeProfile(ctx)
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// onAuthState prints sign-outs that the user did not ask for, such as an
// expired session found during a refresh.
func (a *App) onAuthState() state.Listener {
	last := a.machine.Snapshot()
	return func(s state.AuthState) {
		if last.IsAuthenticated && !s.IsAuthenticated && s.Error == "" {
			fmt.Fprintln(a.out, "You are signed out")
		}
		last = s
	}
}

// watch prints a notice once the resend countdown of ch runs out.
func (a *App) watch(ch *otp.Challenge) {
	a.unwatchChallenge()

	notified := false
	unwatch := ch.Subscribe(func(s otp.Snapshot) {
		if s.ResendEnabled && !notified {
			notified = true
			fmt.Fprintln(a.out, "\nDidn't get the code? Type 'resend'")
		}
		if !s.ResendEnabled {
			notified = false
		}
	})

	a.mu.Lock()
	a.unwatch = unwatch
	a.mu.Unlock()
}

func (a *App) unwatchChallenge() {
	a.mu.Lock()
	fn := a.unwatch
	a.unwatch = nil
	a.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Phone
}

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "ID:      %s\n", u.ID)
	fmt.Fprintf(w, "Phone:   %s\n", u.Phone)
	fmt.Fprintf(w, "Name:    %s\n", u.Name)
	fmt.Fprintf(w, "Email:   %s\n", u.Email)
	fmt.Fprintf(w, "Address: %s\n", u.Address)
	fmt.Fprintf(w, "Pincode: %s\n", u.Pincode)
}
