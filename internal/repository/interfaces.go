package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, email, hash string, profilePictureURL *string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error)
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
