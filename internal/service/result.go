package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/dto"
)

// ResultCode is the outcome of a credential login attempt
type ResultCode string

const (
	ResultUserLoggedIn       ResultCode = "USER_LOGGED_IN"
	ResultInvalidCredentials ResultCode = "INVALID_CREDENTIALS"
	ResultUnknownError       ResultCode = "UNKNOWN_ERROR"
)

// InternalServerError is the only error exposed by the Google login boundary
const InternalServerError = "INTERNAL_SERVER_ERROR"

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token has been revoked")
)

// Result is returned by AuthenticateWithCredentials. Session is set only for
// ResultUserLoggedIn.
type Result struct {
	Code    ResultCode
	Session *Session
}

// Type is "success" for a logged in user and "error" otherwise
func (r Result) Type() string {
	if r.Code == ResultUserLoggedIn {
		return "success"
	}
	return "error"
}

// Session is a freshly issued access/refresh token pair together with the
// cookies the HTTP layer must set for it.
type Session struct {
	UserID                int64
	Email                 string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Cookies               []*http.Cookie
}

func (s *Session) TokenPair() *dto.TokenPair {
	return &dto.TokenPair{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

// GoogleAuthResponse mirrors the HTTP status and body of a Google login.
type GoogleAuthResponse struct {
	Code    int            `json:"code"`
	Data    *dto.TokenPair `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Cookies []*http.Cookie `json:"-"`
}

func internalServerError() *GoogleAuthResponse {
	return &GoogleAuthResponse{
		Code:  http.StatusInternalServerError,
		Error: InternalServerError,
	}
}
