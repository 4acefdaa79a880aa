package domain

import "time"

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// RefreshToken is one issued session renewal right. It is paired with the
// access token minted alongside it and is revoked by setting DeletedAt.
type RefreshToken struct {
	ID          int64      `json:"id" db:"id"`
	Token       string     `json:"-" db:"token"`
	AccessToken string     `json:"-" db:"access_token"`
	UserID      int64      `json:"user_id" db:"user_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ExpiredAt   time.Time  `json:"expired_at" db:"expired_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`
}

// IsValid reports whether the token is neither revoked nor expired at now.
func (t RefreshToken) IsValid(now time.Time) bool {
	return t.DeletedAt == nil && t.ExpiredAt.After(now)
}

// RefreshTokenExpiry returns the expiry for a refresh token created at createdAt.
func RefreshTokenExpiry(createdAt time.Time) time.Time {
	return AddMonths(createdAt, 1)
}

// AddMonths adds n calendar months to t. Unlike time.AddDate the day of month
// is clamped to the last day of the target month, so Jan 31 + 1 is Feb 28
// (or 29) instead of rolling over into March.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
