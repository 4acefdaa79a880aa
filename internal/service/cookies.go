package service

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieWriter builds the session cookie directives applied by the HTTP layer
type CookieWriter struct {
	domain string
	path   string
}

func NewCookieWriter(domain, path string) *CookieWriter {
	if path == "" {
		path = "/"
	}
	return &CookieWriter{domain: domain, path: path}
}

// SessionCookies returns the access and refresh cookies. Each cookie expires
// together with the token it carries.
func (w *CookieWriter) SessionCookies(accessToken string, accessExpiresAt time.Time, refreshToken string, refreshExpiresAt time.Time) []*http.Cookie {
	return []*http.Cookie{
		w.cookie(AccessTokenCookie, accessToken, accessExpiresAt),
		w.cookie(RefreshTokenCookie, refreshToken, refreshExpiresAt),
	}
}

// ClearCookies returns directives that remove both session cookies
func (w *CookieWriter) ClearCookies() []*http.Cookie {
	cookies := []*http.Cookie{
		w.cookie(AccessTokenCookie, "", time.Unix(0, 0)),
		w.cookie(RefreshTokenCookie, "", time.Unix(0, 0)),
	}
	for _, c := range cookies {
		c.MaxAge = -1
	}
	return cookies
}

func (w *CookieWriter) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     w.path,
		Domain:   w.domain,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
