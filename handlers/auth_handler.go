package handlers

import (
	"net/http"

	"cvchat-backend/models"
	"cvchat-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for accounts and sessions
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Token    string `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}

	user, session, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.claimIfRequested(c, req.Token, user)
	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}

	user, session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.claimIfRequested(c, req.Token, user)
	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		_ = h.auth.Logout(c.Request.Context(), token)
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := requireUser(c, h.auth)
	if user == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"public_slug": user.PublicSlug,
		},
	})
}

// DeleteAccount handles DELETE /api/account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := requireUser(c, h.auth)
	if user == nil {
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// claimIfRequested claims an anonymous profile token carried in the auth
// request. Best effort: a failed claim never fails the login itself.
func (h *AuthHandler) claimIfRequested(c *gin.Context, token string, user *models.User) {
	if token == "" {
		return
	}
	_ = h.auth.ClaimProfile(c.Request.Context(), token, user.ID)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	// Session lifetime is enforced server-side; the cookie max-age only has
	// to outlive it.
	c.SetCookie(SessionCookieName, token, 60*60*24, "/", "", false, true)
}
