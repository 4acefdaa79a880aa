package dto

// LoginRequest represents a credential login request. Validation happens in
// the service so that malformed input maps to INVALID_CREDENTIALS.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse mirrors the credential login result
type LoginResponse struct {
	Type       string     `json:"type"`
	ResultCode string     `json:"result_code"`
	Tokens     *TokenPair `json:"tokens,omitempty"`
}

// TokenPair is the access/refresh token pair returned after a login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse represents a user response
type UserResponse struct {
	ID                int64   `json:"id"`
	Email             string  `json:"email"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	CreatedAt         string  `json:"created_at"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
