// Package gateway is the client's boundary to the auth backend.
//
// # Overview
//
// Client is the transport-agnostic contract: request an OTP, verify it,
// refresh a token, password login, revoke, and the two profile calls used
// by the authenticated-request path. HTTPClient implements it over
// HTTP/JSON with the fiber client Agent.
//
// # Error Handling
//
// Every failure is an *Error whose Kind is one of the sentinel errors
// (ErrValidation, ErrNetwork, ErrInvalidCode, ErrRateLimited,
// ErrSessionExpired, ErrUnauthorized, ErrProtocol); match with errors.Is.
// Input that fails local validation is rejected with ErrValidation before
// any request is made. Transport failures, timeouts and cancelled contexts
// all surface as ErrNetwork.
//
// # Retries
//
// None. Retry policy belongs to callers.
package gateway
