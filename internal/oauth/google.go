// Package oauth redeems Google authorization codes and fetches the profile
// of the signed-in account.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prperemyshlev/chat-auth/internal/domain"
)

const (
	DefaultTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	maxBodySize = 1 << 20
)

var (
	ErrFailedToGetAccessToken = errors.New("FAILED_TO_GET_ACCESS_TOKEN")
	ErrFailedToGetUserInfo    = errors.New("FAILED_TO_GET_USER_INFO")
	ErrFailedToParseUserInfo  = errors.New("FAILED_TO_PARSE_USER_INFO")
)

// Exchanger trades an authorization code for the Google profile behind it.
type Exchanger interface {
	GetAccessTokenFromCode(ctx context.Context, code string) (string, error)
	GetUserInfo(ctx context.Context, accessToken string) (*domain.GoogleUserInfo, error)
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	UserInfoURL  string
	Timeout      time.Duration
}

// GoogleClient implements Exchanger against Google's OAuth 2.0 endpoints.
type GoogleClient struct {
	cfg      GoogleConfig
	client   *http.Client
	validate *validator.Validate
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewGoogleClient(cfg GoogleConfig, validate *validator.Validate) *GoogleClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &GoogleClient{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		validate: validate,
	}
}

// GetAccessTokenFromCode redeems an authorization code at the token endpoint.
func (g *GoogleClient) GetAccessTokenFromCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"redirect_uri":  {g.cfg.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrFailedToGetAccessToken, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFailedToGetAccessToken, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrFailedToGetAccessToken, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrFailedToGetAccessToken, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrFailedToGetAccessToken)
	}

	return body.AccessToken, nil
}

// GetUserInfo fetches and validates the profile for a Google access token.
func (g *GoogleClient) GetUserInfo(ctx context.Context, accessToken string) (*domain.GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFailedToGetUserInfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: userinfo endpoint returned %d", ErrFailedToGetUserInfo, resp.StatusCode)
	}

	info := &domain.GoogleUserInfo{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToParseUserInfo, err)
	}
	if err := g.validate.StructCtx(ctx, info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToParseUserInfo, err)
	}

	return info, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
