package refreshtokens

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}

type Repository interface {
	Create(ctx context.Context, userID string, validity time.Duration) (*RefreshToken, error)
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}
