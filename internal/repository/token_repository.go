package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create inserts a refresh token and returns the stored row, including the
// generated id. CreatedAt and UpdatedAt default to now when unset.
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (token, access_token, user_id, created_at, updated_at, expired_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, token, access_token, user_id, created_at, updated_at, expired_at, deleted_at
	`

	now := time.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = token.CreatedAt
	}

	stored, err := scanToken(r.db.DB.QueryRowContext(ctx, query,
		token.Token,
		token.AccessToken,
		token.UserID,
		token.CreatedAt,
		token.UpdatedAt,
		token.ExpiredAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("refresh token for user %d: %w", token.UserID, ErrDuplicateToken)
		}
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return stored, nil
}

// GetByToken retrieves a refresh token row by its token string, including
// revoked and expired rows.
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, token, access_token, user_id, created_at, updated_at, expired_at, deleted_at
		FROM refresh_tokens
		WHERE token = $1
	`

	stored, err := scanToken(r.db.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return stored, nil
}

// SoftDelete marks a refresh token as revoked. Already revoked rows count as not found.
func (r *tokenRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("refresh token with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteExpired physically removes rows that expired before now
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expired_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

func scanToken(row *sql.Row) (*domain.RefreshToken, error) {
	token := &domain.RefreshToken{}
	var deletedAt sql.NullTime

	err := row.Scan(
		&token.ID,
		&token.Token,
		&token.AccessToken,
		&token.UserID,
		&token.CreatedAt,
		&token.UpdatedAt,
		&token.ExpiredAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		token.DeletedAt = &deletedAt.Time
	}

	return token, nil
}
