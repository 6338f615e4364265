// Package logging is the structured logger shared by client and dev backend.
// Call sites depend on Logger; ZapLogger is the only implementation.
package logging

import "context"

// Logger takes a message plus alternating key and value arguments:
//
//	log.Info(ctx, "otp requested", "phone", common.MaskPhone(phone))
//
// ctx is accepted on every level so request-scoped fields can be added
// later without touching callers.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds args to every entry of the returned logger.
	With(args ...any) Logger
}
