package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/gateway"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/services"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// RequestOTP asks the backend for a code. args: <phone> [signup]; the phone
// is prompted for when missing.
func (a *App) RequestOTP(ctx context.Context, args []string) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already signed in, logout first")
		return nil
	}

	phone, err := a.argOrPrompt(args, "Enter mobile number")
	if err != nil {
		return err
	}
	purpose := api.PurposeLogin
	if len(args) > 1 && strings.EqualFold(args[1], "signup") {
		purpose = api.PurposeSignup
	}

	ch, err := a.otp.Open(ctx, phone, purpose)
	if err != nil {
		a.report(err)
		return err
	}
	a.watch(ch)

	fmt.Fprintf(a.out, "Code sent to %s. Enter it with: verify <code>\n", common.MaskPhone(phone))
	a.printDevCode(ch)
	return nil
}

// Verify submits the code for the open challenge.
func (a *App) Verify(ctx context.Context, args []string) error {
	ch := a.otp.Current()
	if ch == nil {
		fmt.Fprintln(a.out, "No code requested, use: otp <phone>")
		return otp.ErrChallengeClosed
	}

	raw, err := a.argOrPrompt(args, "Enter the code")
	if err != nil {
		return err
	}
	code := ch.Input(raw)

	if err := ch.Verify(ctx, code); err != nil {
		a.report(err)
		return err
	}
	a.otp.Close()

	if u := a.machine.Snapshot().User; u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", displayName(u))
	}
	a.completeProfile(ctx)
	return nil
}

// Resend asks for a fresh code once the countdown has run out.
func (a *App) Resend(ctx context.Context) error {
	ch := a.otp.Current()
	if ch == nil {
		fmt.Fprintln(a.out, "No code requested, use: otp <phone>")
		return otp.ErrChallengeClosed
	}

	if err := ch.Resend(ctx); err != nil {
		if errors.Is(err, otp.ErrResendNotReady) {
			fmt.Fprintf(a.out, "Resend available in %ds\n", ch.Snapshot().SecondsRemaining)
			return err
		}
		a.report(err)
		return err
	}

	fmt.Fprintln(a.out, "New code sent")
	a.printDevCode(ch)
	return nil
}

// Login signs in with phone and password.
func (a *App) Login(ctx context.Context, args []string) error {
	identifier, err := a.argOrPrompt(args, "Enter mobile number")
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, identifier, string(password)); err != nil {
		a.report(err)
		return err
	}
	a.otp.Close()

	if u := a.machine.Snapshot().User; u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", displayName(u))
	}
	a.completeProfile(ctx)
	return nil
}

// WhoAmI fetches the profile from the backend and prints it.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	printUser(a.out, u)
	return nil
}

// Profile updates the profile. args are key=value pairs; without args each
// field is prompted for and an empty answer leaves it unchanged.
func (a *App) Profile(ctx context.Context, args []string) error {
	var (
		fields map[string]string
		err    error
	)
	if len(args) > 0 {
		fields, err = parseProfileArgs(args)
	} else {
		fields, err = a.promptProfile()
	}
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	patch := patchFrom(fields)
	if patch.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.authService.UpdateUser(ctx, patch)
	if err != nil {
		a.report(err)
		return err
	}
	printUser(a.out, u)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Token refreshed")
	return nil
}

// Logout ends the session. It succeeds locally even when the backend cannot
// be reached.
func (a *App) Logout(ctx context.Context) error {
	a.otp.Close()
	if err := a.authService.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) promptProfile() (map[string]string, error) {
	out := make(map[string]string)
	for _, k := range []string{"name", "email", "address", "pincode"} {
		v, err := getSimpleText(a.reader, "Enter "+k+" (empty to keep)", a.out)
		if err != nil {
			return nil, err
		}
		if v != "" {
			out[k] = v
		}
	}
	return out, nil
}

// completeProfile asks for the missing details of a user who has not
// finished the profile yet. Skipping is allowed; 'profile' does the same
// later.
func (a *App) completeProfile(ctx context.Context) {
	u := a.machine.Snapshot().User
	if u == nil || u.ProfileComplete() {
		return
	}

	fmt.Fprintln(a.out, "Your profile is incomplete, please add your details")
	fields, err := a.promptProfile()
	if err != nil || len(fields) == 0 {
		fmt.Fprintln(a.out, "Profile not completed, use 'profile' when ready")
		return
	}

	if _, err := a.authService.UpdateUser(ctx, patchFrom(fields)); err != nil {
		a.report(err)
		return
	}
	if u := a.machine.Snapshot().User; u != nil && u.ProfileComplete() {
		fmt.Fprintf(a.out, "Thanks, %s\n", u.Name)
		return
	}
	fmt.Fprintln(a.out, "Profile not completed, use 'profile' when ready")
}

func (a *App) printDevCode(ch *otp.Challenge) {
	if code := ch.DevCode(); code != "" {
		fmt.Fprintln(a.out, "Development code:", code)
	}
}

// report prints err the way the user should see it.
func (a *App) report(err error) {
	switch {
	case errors.Is(err, gateway.ErrValidation):
		fmt.Fprintln(a.out, "Error:", err)
	case errors.Is(err, services.ErrNotAuthenticated):
		fmt.Fprintln(a.out, "Not signed in")
	case errors.Is(err, gateway.ErrSessionExpired):
		fmt.Fprintln(a.out, "Session expired, please sign in again")
	case errors.Is(err, otp.ErrBusy), errors.Is(err, otp.ErrChallengeClosed):
		fmt.Fprintln(a.out, "Error:", err)
	default:
		fmt.Fprintln(a.out, "Error:", gateway.UserMessage(err))
	}
}

func patchFrom(fields map[string]string) models.UserPatch {
	var p models.UserPatch
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = &v
		case "email":
			p.Email = &v
		case "address":
			p.Address = &v
		case "pincode":
			p.Pincode = &v
		}
	}
	return p
}
