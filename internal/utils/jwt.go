package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prperemyshlev/chat-auth/internal/domain"
)

// ErrInvalidToken is returned for access tokens that fail parsing or validation
var ErrInvalidToken = errors.New("invalid token")

// JWTManager manages JWT token operations
type JWTManager struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:            []byte(secret),
		accessTokenExpiry: accessTokenExpiry,
		now:               time.Now,
	}
}

type accessClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// CreateNewJWT signs an access token for the user. The returned claims carry
// the issued-at and expiry times written into the token. Every token gets a
// fresh jti so two tokens minted in the same second still differ.
func (j *JWTManager) CreateNewJWT(email string, userID int64) (string, *domain.TokenClaims, error) {
	issuedAt := j.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(j.accessTokenExpiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, &domain.TokenClaims{
		UserID: userID,
		Email:  email,
		Exp:    expiresAt.Unix(),
		Iat:    issuedAt.Unix(),
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTManager) ValidateToken(tokenString string) (*domain.TokenClaims, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == 0 || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	tokenClaims := &domain.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Exp:    claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		tokenClaims.Iat = claims.IssuedAt.Unix()
	}

	return tokenClaims, nil
}

// AccessTokenExpiry returns the lifetime of minted access tokens
func (j *JWTManager) AccessTokenExpiry() time.Duration {
	return j.accessTokenExpiry
}
