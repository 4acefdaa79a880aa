package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/repository"
	"go.uber.org/zap"
)

// TokenJanitor periodically removes refresh tokens past their expiry
type TokenJanitor struct {
	tokens   repository.TokenRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewTokenJanitor(tokens repository.TokenRepository, interval time.Duration, logger *zap.Logger) *TokenJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenJanitor{tokens: tokens, interval: interval, logger: logger}
}

// Run blocks until ctx is done
func (j *TokenJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *TokenJanitor) sweep(ctx context.Context) {
	n, err := j.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.Error("Failed to delete expired refresh tokens", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("Deleted expired refresh tokens", zap.Int64("count", n))
	}
}
