package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/auth"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/config"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/otp"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/refreshtokens"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	codes                        *otp.Store
	clock                        clockwork.Clock
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	demoPasswordHash             []byte
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, codes *otp.Store, clock clockwork.Clock, cfg *config.Config) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing demo password: %w", err)
	}

	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		codes:                        codes,
		clock:                        clock,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		demoPasswordHash:             hash,
	}, nil
}

// SendOTP issues a code for phone. The caller decides whether to reveal it.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, error) {
	return s.codes.Generate(phone)
}

// VerifyOTP checks the code and signs the phone's owner in, registering
// a new user with an empty profile on first sight.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*User, *TokenPair, error) {
	if err := s.codes.Verify(phone, code); err != nil {
		return nil, nil, err
	}

	user, err := s.repo.GetUserByPhone(ctx, phone)
	if errors.Is(err, ErrNotFound) {
		user, err = s.repo.Create(ctx, &User{Phone: phone, PasswordHash: s.demoPasswordHash})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error loading user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, phone, secret string) (*User, *TokenPair, error) {
	user, err := s.repo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(secret)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken rotates the pair: the presented refresh token is spent.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error deleting refresh token: %w", err)
	}

	if token.Expires.Before(s.clock.Now()) {
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.repo.Get(ctx, token.UserID)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, user)
}

// Logout revokes every refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.DeleteByUser(ctx, userID)
}

// Authenticate resolves an access token to its user ID.
func (s *Service) Authenticate(accessToken string) (string, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret, s.clock.Now())
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*User, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Phone, s.jwtSecret, s.clock.Now(), s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refresh, err := s.refreshTokenRepo.Create(ctx, user.ID, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresIn:    s.accessTokenValidityDuration,
	}, nil
}
