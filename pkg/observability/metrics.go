package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// AuthMetrics counts login attempts and issued sessions
type AuthMetrics struct {
	logins   metric.Int64Counter
	sessions metric.Int64Counter
}

func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	logins, err := meter.Int64Counter("auth_login_attempts_total",
		metric.WithDescription("Login attempts by method and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login counter: %w", err)
	}

	sessions, err := meter.Int64Counter("auth_sessions_issued_total",
		metric.WithDescription("Access/refresh token pairs issued"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session counter: %w", err)
	}

	return &AuthMetrics{logins: logins, sessions: sessions}, nil
}

func (m *AuthMetrics) RecordLogin(ctx context.Context, method, result string) {
	m.logins.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("result", result),
	))
}

func (m *AuthMetrics) RecordSessionIssued(ctx context.Context) {
	m.sessions.Add(ctx, 1)
}
