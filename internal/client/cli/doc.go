// Package cli is the interactive terminal client.
//
// It restores the stored session, then runs a REPL over the auth service and
// the OTP controller. Typical flow: "otp <phone>", wait for the code,
// "verify <code>". Once signed in, "whoami" and "profile" exercise
// authenticated calls and "logout" ends the session.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
