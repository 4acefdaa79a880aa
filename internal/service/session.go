package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
)

// Login mints a new access token and refresh token for the user, stores the
// refresh token and returns both together with their cookies. Earlier
// refresh tokens are never reused.
func (s *authService) Login(ctx context.Context, email string, userID int64) (*Session, error) {
	accessToken, claims, err := s.jwtManager.CreateNewJWT(email, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.createNewRefreshToken(ctx, accessToken, userID)
	if err != nil {
		return nil, err
	}

	accessExpiresAt := time.Unix(claims.Exp, 0)
	s.metrics.RecordSessionIssued(ctx)

	return &Session{
		UserID:                userID,
		Email:                 email,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refresh.Token,
		RefreshTokenExpiresAt: refresh.ExpiredAt,
		Cookies:               s.cookies.SessionCookies(accessToken, accessExpiresAt, refresh.Token, refresh.ExpiredAt),
	}, nil
}

// createNewRefreshToken stores a random refresh token paired with accessToken.
// It expires one calendar month after creation.
func (s *authService) createNewRefreshToken(ctx context.Context, accessToken string, userID int64) (*domain.RefreshToken, error) {
	token, err := s.randString(refreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Postgres keeps microseconds; truncating keeps the stored row equal to what we computed.
	now := s.now().UTC().Truncate(time.Microsecond)

	stored, err := s.tokenRepo.Create(ctx, &domain.RefreshToken{
		Token:       token,
		AccessToken: accessToken,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiredAt:   domain.RefreshTokenExpiry(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return stored, nil
}
