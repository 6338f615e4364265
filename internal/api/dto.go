// Package api describes the JSON contract between the client and the auth
// backend: routes, request/response bodies and their validation rules.
package api

import "github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"

// Routes of the auth backend.
const (
	RouteSendOTP   = "/api/auth/otp/send"
	RouteVerifyOTP = "/api/auth/otp/verify"
	RouteRefresh   = "/api/auth/token/refresh"
	RouteLogin     = "/api/auth/login"
	RouteLogout    = "/api/auth/logout"
	RouteMe        = "/api/users/me"
)

// Purpose tells the backend why an OTP is requested.
type Purpose string

const (
	PurposeLogin  Purpose = "LOGIN"
	PurposeSignup Purpose = "SIGNUP"
)

// SendOTPRequest asks the backend to text a code to Phone.
type SendOTPRequest struct {
	Phone   string  `json:"phone" validate:"required,in_mobile"`
	Purpose Purpose `json:"purpose" validate:"required,oneof=LOGIN SIGNUP"`
}

// SendOTPResponse acknowledges a SendOTPRequest.
type SendOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Code is only filled in by development backends.
	Code string `json:"code,omitempty"`
}

// VerifyOTPRequest exchanges a code for a session.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,in_mobile"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

// LoginRequest authenticates with an identifier and a secret.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=128"`
	Secret     string `json:"secret" validate:"required,max=256"`
}

// AuthResponse is returned by verify and login.
type AuthResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message,omitempty"`
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse carries the new pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Pincode *string `json:"pincode,omitempty" validate:"omitempty,numeric,len=6"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
