package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/chat-auth/internal/dto"
	"github.com/prperemyshlev/chat-auth/internal/service"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxClaims = "claims"
)

// AuthMiddleware validates the access token and adds user info to context.
// The token is read from the Authorization header, falling back to the
// access token cookie.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Access token is required",
			})
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

// accessTokenFromRequest returns the bearer token or the access token cookie
func accessTokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	token, err := c.Cookie(service.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func userIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
