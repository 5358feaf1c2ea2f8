package handlers

import (
	"errors"
	"net/http"

	"cvchat-backend/models"
	"cvchat-backend/service"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the login session token
const SessionCookieName = "cvchat_session"

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service-layer sentinel errors onto HTTP statuses
// and the error envelope
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnreadableDocument):
		respondError(c, http.StatusBadRequest, "UNREADABLE_DOCUMENT", err.Error())
	case errors.Is(err, service.ErrParsingUnavailable):
		respondError(c, http.StatusBadGateway, "PARSER_UNAVAILABLE", "Document parsing is temporarily unavailable")
	case errors.Is(err, service.ErrMalformedModelOutput):
		respondError(c, http.StatusInternalServerError, "MODEL_OUTPUT_INVALID", "Document parsing produced an invalid result")
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, service.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "ACCESS_DENIED", "You do not have access to this profile")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrSessionInvalid):
		respondError(c, http.StatusUnauthorized, "SESSION_INVALID", "Not authenticated")
	default:
		// Internal detail (SQL, DSNs, driver messages) stays out of the
		// response body; gin's logger picks the error up from the context.
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// sessionUser resolves the request's session cookie to a user, or nil when
// no valid session is attached. Handlers that allow anonymous access use the
// nil result directly.
func sessionUser(c *gin.Context, auth *service.AuthService) *models.User {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil
	}

	user, err := auth.ValidateSession(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

// requireUser resolves the session cookie and writes a 401 when it does not
// identify a user. Returns nil after responding.
func requireUser(c *gin.Context, auth *service.AuthService) *models.User {
	user := sessionUser(c, auth)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "SESSION_INVALID", "Not authenticated")
		return nil
	}
	return user
}
