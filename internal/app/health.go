package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

type dependencyCheck struct {
	name string
	err  error
}

// check pings every backing store concurrently and reports each result
func (h *HealthChecker) check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make(chan dependencyCheck, 2)

	go func() {
		results <- dependencyCheck{name: "postgres", err: h.infra.Postgres().Ping(ctx)}
	}()

	go func() {
		results <- dependencyCheck{name: "redis", err: h.infra.Redis().Ping(ctx)}
	}()

	failures := map[string]string{}
	for range 2 {
		r := <-results
		if r.err != nil {
			failures[r.name] = r.err.Error()
		}
	}
	return failures
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if failures := h.check(c.Request.Context()); len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"checks": failures,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
	})
}
