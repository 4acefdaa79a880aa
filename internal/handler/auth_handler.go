package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/chat-auth/internal/dto"
	"github.com/prperemyshlev/chat-auth/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

var loginStatus = map[service.ResultCode]int{
	service.ResultUserLoggedIn:       http.StatusOK,
	service.ResultInvalidCredentials: http.StatusUnauthorized,
	service.ResultUnknownError:       http.StatusInternalServerError,
}

// Login handles credential login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.LoginResponse
// @Failure 500 {object} dto.LoginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		// An unreadable body is just a login without credentials.
		req = dto.LoginRequest{}
	}

	result := h.authService.AuthenticateWithCredentials(c.Request.Context(), req.Email, req.Password)

	resp := dto.LoginResponse{
		Type:       result.Type(),
		ResultCode: string(result.Code),
	}
	if result.Session != nil {
		setCookies(c, result.Session.Cookies)
		resp.Tokens = result.Session.TokenPair()
	}

	status, ok := loginStatus[result.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

// GoogleCallback handles the OAuth redirect from Google
// @Summary Google login
// @Description Exchange a Google authorization code for a session
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} service.GoogleAuthResponse
// @Success 201 {object} service.GoogleAuthResponse
// @Failure 500 {object} service.GoogleAuthResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	resp := h.authService.AuthenticateWithGoogle(c.Request.Context(), c.Query("code"))

	setCookies(c, resp.Cookies)
	c.JSON(resp.Code, resp)
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Rotate the refresh token cookie and issue a new access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.TokenPair
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(service.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Token refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to refresh session",
		})
		return
	}

	setCookies(c, session.Cookies)
	c.JSON(http.StatusOK, session.TokenPair())
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the session tokens and clear the cookies
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(service.RefreshTokenCookie)

	cookies, err := h.authService.Logout(c.Request.Context(), refreshToken, accessTokenFromRequest(c))
	if err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to log out",
		})
		return
	}

	setCookies(c, cookies)
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Description Get information about the current authenticated user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load current user", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to load user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

func setCookies(c *gin.Context, cookies []*http.Cookie) {
	for _, ck := range cookies {
		http.SetCookie(c.Writer, ck)
	}
}
