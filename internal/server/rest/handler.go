package rest

import (
	"context"
	"errors"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/refreshtokens"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/users"
	"github.com/gofiber/fiber/v2"
)

// UserService is what the handlers need from users.Service.
type UserService interface {
	SendOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, code string) (*users.User, *users.TokenPair, error)
	Login(ctx context.Context, phone, secret string) (*users.User, *users.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*users.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(accessToken string) (string, error)
	Get(ctx context.Context, id string) (*users.User, error)
	Update(ctx context.Context, id string, patch users.Patch) (*users.User, error)
}

// parse decodes and validates the body. Its errors are *fiber.Error values
// rendered by the app's error handler.
func (s *Server) parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, api.Describe(err))
	}
	return nil
}

func (s *Server) SendOTP(c *fiber.Ctx) error {
	var req api.SendOTPRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}

	code, err := s.users.SendOTP(c.UserContext(), req.Phone)
	if err != nil {
		if errors.Is(err, otp.ErrResendTooSoon) {
			return respondWithError(c, fiber.StatusTooManyRequests, err.Error())
		}
		return respondInternalError(c, "Failed to generate OTP code", err.Error())
	}

	s.logger.Info(c.UserContext(), "otp issued", "phone", common.MaskPhone(req.Phone), "purpose", req.Purpose)

	resp := api.SendOTPResponse{Success: true, Message: "OTP code sent successfully"}
	if s.exposeOTP {
		resp.Code = code
	}
	return respondOK(c, resp)
}

func (s *Server) VerifyOTP(c *fiber.Ctx) error {
	var req api.VerifyOTPRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}

	user, pair, err := s.users.VerifyOTP(c.UserContext(), req.Phone, req.Code)
	switch {
	case errors.Is(err, otp.ErrCodeExpired), errors.Is(err, otp.ErrTooManyAttempts):
		return respondWithError(c, fiber.StatusGone, err.Error())
	case errors.Is(err, otp.ErrCodeMismatch), errors.Is(err, otp.ErrCodeNotFound):
		return respondBadRequest(c, err.Error())
	case err != nil:
		return respondInternalError(c, "Failed to verify OTP", err.Error())
	}

	s.logger.Info(c.UserContext(), "otp verified", "phone", common.MaskPhone(req.Phone), "user_id", user.ID)
	return respondOK(c, authResponse(user, pair))
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req api.LoginRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}

	user, pair, err := s.users.Login(c.UserContext(), req.Identifier, req.Secret)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return respondUnauthorized(c, err.Error())
		}
		return respondInternalError(c, "Failed to log in", err.Error())
	}
	return respondOK(c, authResponse(user, pair))
}

func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req api.RefreshTokenRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}

	pair, err := s.users.RefreshToken(c.UserContext(), req.RefreshToken)
	switch {
	case errors.Is(err, refreshtokens.ErrNotFound), errors.Is(err, users.ErrRefreshTokenExpired), errors.Is(err, users.ErrNotFound):
		return respondUnauthorized(c, "refresh token expired")
	case err != nil:
		return respondInternalError(c, "Failed to refresh token", err.Error())
	}

	return respondOK(c, api.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}

func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.users.Logout(c.UserContext(), currentUserID(c)); err != nil {
		return respondInternalError(c, "Failed to log out", err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.users.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.userError(c, err)
	}
	return respondOK(c, toModel(user))
}

func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req api.UpdateProfileRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}

	user, err := s.users.Update(c.UserContext(), currentUserID(c), users.Patch{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		Pincode: req.Pincode,
	})
	if err != nil {
		return s.userError(c, err)
	}
	return respondOK(c, toModel(user))
}

func (s *Server) userError(c *fiber.Ctx, err error) error {
	if errors.Is(err, users.ErrNotFound) {
		return respondWithError(c, fiber.StatusNotFound, err.Error())
	}
	return respondInternalError(c, "Failed to load user", err.Error())
}

func authResponse(user *users.User, pair *users.TokenPair) api.AuthResponse {
	return api.AuthResponse{
		Success:      true,
		User:         toModel(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}

func toModel(u *users.User) *models.User {
	return &models.User{
		ID:      u.ID,
		Phone:   u.Phone,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Pincode: u.Pincode,
	}
}
