package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/pkg/database"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user and returns the generated id
func (r *userRepository) Create(ctx context.Context, email, hash string, profilePictureURL *string) (int64, error) {
	query := `
		INSERT INTO users (email, hash, profile_picture_url)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var picture sql.NullString
	if profilePictureURL != nil {
		picture = sql.NullString{String: *profilePictureURL, Valid: true}
	}

	var id int64
	err := r.db.DB.QueryRowContext(ctx, query, email, hash, picture).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user with email %s already exists: %w", email, ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, hash, profile_picture_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, hash, profile_picture_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var picture sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Hash,
		&picture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if picture.Valid {
		user.ProfilePictureURL = &picture.String
	}

	return user, nil
}
