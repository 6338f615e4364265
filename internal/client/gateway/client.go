package gateway

import (
	"context"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
)

// OTPResult acknowledges an OTP request.
type OTPResult struct {
	Success bool
	Message string
	// DevCode is the code itself, echoed only by development backends.
	DevCode string
}

// Client is the auth backend as seen by the client.
type Client interface {
	RequestOTP(ctx context.Context, phone string, purpose api.Purpose) (*OTPResult, error)
	VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error)
	RefreshToken(ctx context.Context, current models.Token) (*models.Token, error)
	Login(ctx context.Context, identifier, secret string) (*models.Session, error)
	Revoke(ctx context.Context, token models.Token) error
	Me(ctx context.Context, token models.Token) (*models.User, error)
	UpdateProfile(ctx context.Context, token models.Token, patch models.UserPatch) (*models.User, error)
}
