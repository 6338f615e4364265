// Package common contains shared constants and small helpers used across
// the client packages.
package common

// Header names attached to every outbound backend request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	DeviceIDHeaderName      = "X-Device-ID"
)

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// Storage keys used by the session layer.
const (
	SessionStorageKey  = "session"
	DeviceIDStorageKey = "device_id"
)
