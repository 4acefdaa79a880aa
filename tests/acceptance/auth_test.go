//go:build acceptance

package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/internal/dto"
	"github.com/prperemyshlev/chat-auth/internal/repository"
	"github.com/prperemyshlev/chat-auth/internal/service"
	"github.com/prperemyshlev/chat-auth/internal/utils"
)

func (s *Suite) createUser(email, password string) int64 {
	hash, err := utils.NewBcryptHasher(4).Hash(password)
	s.Require().NoError(err)

	id, err := repository.NewRepositories(s.Postgres).User.Create(context.Background(), email, hash, nil)
	s.Require().NoError(err)
	return id
}

func (s *Suite) login(email, password string) (*http.Response, dto.LoginResponse) {
	body, _ := json.Marshal(dto.LoginRequest{Email: email, Password: password})

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out dto.LoginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (s *Suite) googleCallback(code string) (*http.Response, service.GoogleAuthResponse) {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/google/callback?code=" + code)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out service.GoogleAuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (s *Suite) post(path string, cookies ...*http.Cookie) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+path, nil)
	s.Require().NoError(err)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) me(accessToken string) int {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	return resp.StatusCode
}

func (s *Suite) cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	s.FailNow("missing cookie", name)
	return nil
}

func (s *Suite) refreshRow(token string) *domain.RefreshToken {
	row, err := repository.NewRepositories(s.Postgres).Token.GetByToken(context.Background(), token)
	s.Require().NoError(err)
	return row
}

func (s *Suite) countUsers() int {
	var n int
	s.Require().NoError(s.Postgres.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	return n
}

func (s *Suite) TestLogin_Success() {
	userID := s.createUser("login@example.com", "Password123")

	resp, body := s.login("login@example.com", "Password123")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("success", body.Type)
	s.Equal("USER_LOGGED_IN", body.ResultCode)
	s.Require().NotNil(body.Tokens)

	refresh := s.cookie(resp, service.RefreshTokenCookie)
	access := s.cookie(resp, service.AccessTokenCookie)
	s.Equal(body.Tokens.RefreshToken, refresh.Value)
	s.Equal(body.Tokens.AccessToken, access.Value)
	s.True(refresh.Secure)
	s.True(refresh.HttpOnly)
	s.Equal(http.SameSiteStrictMode, refresh.SameSite)

	row := s.refreshRow(refresh.Value)
	s.Equal(userID, row.UserID)
	s.Equal(body.Tokens.AccessToken, row.AccessToken)
	s.Nil(row.DeletedAt)
	s.True(row.ExpiredAt.Equal(domain.AddMonths(row.CreatedAt.UTC(), 1)))
	// Cookie expiry has second precision on the wire.
	s.WithinDuration(row.ExpiredAt, refresh.Expires, time.Second)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	s.createUser("login@example.com", "Password123")

	cases := []struct{ email, password string }{
		{"login@example.com", "WrongPassword"},
		{"nobody@example.com", "Password123"},
		{"not-an-email", "Password123"},
		{"login@example.com", "short"},
	}
	for _, c := range cases {
		resp, body := s.login(c.email, c.password)
		s.Equal(http.StatusUnauthorized, resp.StatusCode, c)
		s.Equal("error", body.Type)
		s.Equal("INVALID_CREDENTIALS", body.ResultCode)
		s.Empty(resp.Cookies())
	}
}

func (s *Suite) TestLogin_TwiceIssuesDistinctTokens() {
	s.createUser("login@example.com", "Password123")

	_, first := s.login("login@example.com", "Password123")
	_, second := s.login("login@example.com", "Password123")

	s.Require().NotNil(first.Tokens)
	s.Require().NotNil(second.Tokens)
	s.NotEqual(first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	s.NotEqual(first.Tokens.AccessToken, second.Tokens.AccessToken)
}

func (s *Suite) TestGoogle_CreatesThenLogsIn() {
	resp, body := s.googleCallback("first-code")
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal(http.StatusCreated, body.Code)
	s.Require().NotNil(body.Data)
	s.Equal(body.Data.RefreshToken, s.cookie(resp, service.RefreshTokenCookie).Value)
	s.Equal(1, s.countUsers())

	resp, body = s.googleCallback("second-code")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotNil(body.Data)
	s.Equal(1, s.countUsers())

	var picture string
	s.Require().NoError(s.Postgres.DB.QueryRow("SELECT profile_picture_url FROM users WHERE email = $1", "ada@example.com").Scan(&picture))
	s.Equal("https://example.com/ada.png", picture)
}

func (s *Suite) TestGoogle_ConcurrentFirstLogin() {
	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(s.BaseURL + "/api/v1/auth/google/callback?code=c")
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		s.Contains([]int{http.StatusOK, http.StatusCreated}, code)
		if code == http.StatusCreated {
			created++
		}
	}
	s.Equal(1, created)
	s.Equal(1, s.countUsers())
}

func (s *Suite) TestGoogle_ExchangeFailure() {
	s.Google.failTokenExchange()

	resp, body := s.googleCallback("bad-code")

	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Equal(http.StatusInternalServerError, body.Code)
	s.Equal("INTERNAL_SERVER_ERROR", body.Error)
	s.Nil(body.Data)
	s.Zero(s.countUsers())
}

func (s *Suite) TestRefresh_RotatesSession() {
	s.createUser("login@example.com", "Password123")
	loginResp, first := s.login("login@example.com", "Password123")
	s.Require().NotNil(first.Tokens)

	resp := s.post("/api/v1/auth/refresh", s.cookie(loginResp, service.RefreshTokenCookie))
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var pair dto.TokenPair
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pair))
	s.NotEqual(first.Tokens.RefreshToken, pair.RefreshToken)

	s.NotNil(s.refreshRow(first.Tokens.RefreshToken).DeletedAt)
	s.Equal(http.StatusUnauthorized, s.me(first.Tokens.AccessToken))
	s.Equal(http.StatusOK, s.me(pair.AccessToken))

	replay := s.post("/api/v1/auth/refresh", s.cookie(loginResp, service.RefreshTokenCookie))
	replay.Body.Close()
	s.Equal(http.StatusUnauthorized, replay.StatusCode)
}

func (s *Suite) TestLogout_RevokesSession() {
	s.createUser("login@example.com", "Password123")
	loginResp, body := s.login("login@example.com", "Password123")
	s.Require().NotNil(body.Tokens)
	s.Equal(http.StatusOK, s.me(body.Tokens.AccessToken))

	resp := s.post("/api/v1/auth/logout",
		s.cookie(loginResp, service.RefreshTokenCookie),
		s.cookie(loginResp, service.AccessTokenCookie),
	)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		s.Empty(c.Value)
	}

	s.NotNil(s.refreshRow(body.Tokens.RefreshToken).DeletedAt)
	s.Equal(http.StatusUnauthorized, s.me(body.Tokens.AccessToken))
}

func (s *Suite) TestMe() {
	userID := s.createUser("me@example.com", "Password123")
	_, body := s.login("me@example.com", "Password123")
	s.Require().NotNil(body.Tokens)

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+body.Tokens.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.Equal(userID, user.ID)
	s.Equal("me@example.com", user.Email)
	s.Nil(user.ProfilePictureURL)

	s.Equal(http.StatusUnauthorized, s.me("garbage"))
}
