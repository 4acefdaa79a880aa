package service

import (
	"context"
	"net/http"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/internal/dto"
)

// AuthService issues and revokes sessions
type AuthService interface {
	AuthenticateWithCredentials(ctx context.Context, email, password string) Result
	AuthenticateWithGoogle(ctx context.Context, code string) *GoogleAuthResponse
	Login(ctx context.Context, email string, userID int64) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, refreshToken, accessToken string) ([]*http.Cookie, error)
	GetUser(ctx context.Context, userID int64) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
