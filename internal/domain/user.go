package domain

import "time"

// User represents a user in the system
type User struct {
	ID                int64     `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Hash              string    `json:"-" db:"hash"`
	ProfilePictureURL *string   `json:"profile_picture_url" db:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// GoogleUserInfo is the subset of the Google userinfo payload the service relies on.
// Fields are pointers so that a missing key can be told apart from an empty string.
type GoogleUserInfo struct {
	Name    *string `json:"name" validate:"required"`
	Email   *string `json:"email" validate:"required,email"`
	Picture *string `json:"picture" validate:"required"`
}
