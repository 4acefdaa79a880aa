package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/internal/dto"
	"github.com/prperemyshlev/chat-auth/internal/oauth"
	"github.com/prperemyshlev/chat-auth/internal/repository"
	"github.com/prperemyshlev/chat-auth/internal/utils"
	"github.com/prperemyshlev/chat-auth/pkg/observability"
	"go.uber.org/zap"
)

const (
	refreshTokenLength      = 32
	generatedPasswordLength = 10

	methodCredentials = "credentials"
	methodGoogle      = "google"
)

// Dependencies groups the collaborators of the auth service
type Dependencies struct {
	Users      repository.UserRepository
	Tokens     repository.TokenRepository
	Google     oauth.Exchanger
	JWT        *utils.JWTManager
	Hasher     utils.PasswordHasher
	UserCache  *UserCache
	Blacklist  *TokenBlacklistService
	Cookies    *CookieWriter
	Metrics    *observability.AuthMetrics
	Logger     *zap.Logger
	Clock      func() time.Time
	RandString func(n int) (string, error)
}

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	google     oauth.Exchanger
	jwtManager *utils.JWTManager
	hasher     utils.PasswordHasher
	userCache  *UserCache
	blacklist  *TokenBlacklistService
	cookies    *CookieWriter
	metrics    *observability.AuthMetrics
	logger     *zap.Logger
	now        func() time.Time
	randString func(n int) (string, error)
}

// NewAuthService creates a new auth service
func NewAuthService(deps Dependencies) AuthService {
	s := &authService{
		userRepo:   deps.Users,
		tokenRepo:  deps.Tokens,
		google:     deps.Google,
		jwtManager: deps.JWT,
		hasher:     deps.Hasher,
		userCache:  deps.UserCache,
		blacklist:  deps.Blacklist,
		cookies:    deps.Cookies,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
		randString: deps.RandString,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.randString == nil {
		s.randString = utils.GenerateRandomString
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// AuthenticateWithCredentials logs a user in with email and password.
// Malformed input is rejected before any lookup.
func (s *authService) AuthenticateWithCredentials(ctx context.Context, email, password string) Result {
	result := s.authenticateWithCredentials(ctx, email, password)
	s.metrics.RecordLogin(ctx, methodCredentials, string(result.Code))
	return result
}

func (s *authService) authenticateWithCredentials(ctx context.Context, email, password string) Result {
	email = utils.SanitizeEmail(email)
	if !utils.ValidateEmail(email) || !utils.ValidatePassword(password) {
		return Result{Code: ResultInvalidCredentials}
	}

	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Credential login lookup failed", zap.Error(err))
		return Result{Code: ResultUnknownError}
	}
	if user == nil || !s.hasher.Verify(password, user.Hash) {
		return Result{Code: ResultInvalidCredentials}
	}

	session, err := s.Login(ctx, user.Email, user.ID)
	if err != nil {
		s.logger.Error("Failed to issue session", zap.Int64("user_id", user.ID), zap.Error(err))
		return Result{Code: ResultUnknownError}
	}

	return Result{Code: ResultUserLoggedIn, Session: session}
}

// AuthenticateWithGoogle redeems an OAuth code and logs the matching user in,
// creating the account on first sign in. Every failure, panics included, is
// reported as a 500 with INTERNAL_SERVER_ERROR.
func (s *authService) AuthenticateWithGoogle(ctx context.Context, code string) (resp *GoogleAuthResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Google login panicked", zap.Any("panic", r))
			s.metrics.RecordLogin(ctx, methodGoogle, InternalServerError)
			resp = internalServerError()
		}
	}()

	session, created, err := s.googleLogin(ctx, code)
	if err != nil {
		s.logger.Error("Google login failed", zap.Error(err))
		s.metrics.RecordLogin(ctx, methodGoogle, InternalServerError)
		return internalServerError()
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.metrics.RecordLogin(ctx, methodGoogle, http.StatusText(status))

	return &GoogleAuthResponse{
		Code:    status,
		Data:    session.TokenPair(),
		Cookies: session.Cookies,
	}
}

func (s *authService) googleLogin(ctx context.Context, code string) (*Session, bool, error) {
	googleAccessToken, err := s.google.GetAccessTokenFromCode(ctx, code)
	if err != nil {
		return nil, false, err
	}

	info, err := s.google.GetUserInfo(ctx, googleAccessToken)
	if err != nil {
		return nil, false, err
	}
	email := utils.SanitizeEmail(*info.Email)

	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		session, err := s.Login(ctx, user.Email, user.ID)
		return session, false, err
	}

	id, err := s.createNewAccount(ctx, email, info.Picture)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// A concurrent request created the account first; log in as that user.
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load concurrently created user: %w", err)
		}
		session, err := s.Login(ctx, user.Email, user.ID)
		return session, false, err
	}
	if err != nil {
		return nil, false, err
	}

	session, err := s.Login(ctx, email, id)
	return session, true, err
}

// createNewAccount stores a Google user with a random, never disclosed password
func (s *authService) createNewAccount(ctx context.Context, email string, picture *string) (int64, error) {
	password, err := s.randString(generatedPasswordLength)
	if err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	id, err := s.userRepo.Create(ctx, email, hash, picture)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Created account from Google login", zap.Int64("user_id", id))
	return id, nil
}

// findUserByEmail reads through the user cache. A nil user means no such account.
func (s *authService) findUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	cached, err := s.userCache.Get(ctx, email)
	if err != nil {
		s.logger.Warn("User cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.userCache.Set(ctx, user); err != nil {
		s.logger.Warn("User cache write failed", zap.Error(err))
	}

	return user, nil
}

// Refresh rotates a refresh token: a new session is issued for the owner of
// the presented row, then the row is revoked. The row stays usable when the
// new session cannot be stored.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	row, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !row.IsValid(s.now()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	session, err := s.Login(ctx, user.Email, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.SoftDelete(ctx, row.ID, s.now()); err != nil {
		// The new session must not outlive a rotation that did not happen.
		s.revokeSession(ctx, session)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	s.revokeAccessToken(ctx, row.AccessToken)

	return session, nil
}

// revokeSession undoes a session issued by Login
func (s *authService) revokeSession(ctx context.Context, session *Session) {
	row, err := s.tokenRepo.GetByToken(ctx, session.RefreshToken)
	if err == nil {
		err = s.tokenRepo.SoftDelete(ctx, row.ID, s.now())
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Failed to revoke unused refresh token", zap.Int64("user_id", session.UserID), zap.Error(err))
	}
	s.revokeAccessToken(ctx, session.AccessToken)
}

// Logout revokes the refresh token and its access token. Unknown tokens are
// ignored so logout always succeeds for the client.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) ([]*http.Cookie, error) {
	if refreshToken != "" {
		row, err := s.tokenRepo.GetByToken(ctx, refreshToken)
		switch {
		case err == nil && row.DeletedAt == nil:
			if err := s.tokenRepo.SoftDelete(ctx, row.ID, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
			}
			s.revokeAccessToken(ctx, row.AccessToken)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to get refresh token: %w", err)
		}
	}

	if accessToken != "" {
		s.revokeAccessToken(ctx, accessToken)
	}

	return s.cookies.ClearCookies(), nil
}

// revokeAccessToken blacklists a still valid access token until it expires
func (s *authService) revokeAccessToken(ctx context.Context, token string) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return
	}

	ttl := time.Unix(claims.Exp, 0).Sub(s.now())
	if ttl <= 0 {
		return
	}

	if err := s.blacklist.AddToken(ctx, token, ttl); err != nil {
		s.logger.Warn("Failed to blacklist access token", zap.Int64("user_id", claims.UserID), zap.Error(err))
	}
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &dto.UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		ProfilePictureURL: user.ProfilePictureURL,
		CreatedAt:         user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	isBlacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, ErrTokenRevoked
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
