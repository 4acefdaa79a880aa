package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/pkg/database"
)

// UserCache stores user rows in Redis hashes keyed by email
type UserCache struct {
	redis *database.Redis
	ttl   time.Duration
}

func NewUserCache(redis *database.Redis, ttl time.Duration) *UserCache {
	return &UserCache{redis: redis, ttl: ttl}
}

func userKey(email string) string {
	return "user:" + email
}

// Get returns the cached user or nil on a miss
func (c *UserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	fields, err := c.redis.Client.HGetAll(ctx, userKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached user: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt cached user %s: %w", email, err)
	}

	user := &domain.User{
		ID:    id,
		Email: fields["email"],
		Hash:  fields["hash"],
	}
	if picture, ok := fields["profile_picture_url"]; ok && picture != "" {
		user.ProfilePictureURL = &picture
	}

	return user, nil
}

// Set caches user under its email for the configured ttl
func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	key := userKey(user.Email)
	values := map[string]any{
		"id":    strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"hash":  user.Hash,
	}
	if user.ProfilePictureURL != nil {
		values["profile_picture_url"] = *user.ProfilePictureURL
	}

	pipe := c.redis.Client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

// hashToken hashes a token using SHA256 so raw tokens never become Redis keys
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
