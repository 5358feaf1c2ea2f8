package handlers

import (
	"net/http"
	"strings"

	"cvchat-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for grounded question answering
type ChatHandler struct {
	engine *service.AnsweringEngine
	auth   *service.AuthService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *service.AnsweringEngine, auth *service.AuthService) *ChatHandler {
	return &ChatHandler{engine: engine, auth: auth}
}

type tokenChatRequest struct {
	Token    string `json:"token"`
	Question string `json:"question"`
}

type slugChatRequest struct {
	Slug     string `json:"slug"`
	Question string `json:"question"`
}

// Chat handles POST /api/chat: questions against a private profile token
func (h *ChatHandler) Chat(c *gin.Context) {
	var req tokenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" || strings.TrimSpace(req.Question) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "token and question are required")
		return
	}

	var requester *uuid.UUID
	if user := sessionUser(c, h.auth); user != nil {
		requester = &user.ID
	}

	answer, err := h.engine.AnswerForToken(c.Request.Context(), req.Token, req.Question, requester)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"answer": answer},
	})
}

// PublicChat handles POST /api/public/chat: questions against a public slug
func (h *ChatHandler) PublicChat(c *gin.Context) {
	var req slugChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Slug) == "" || strings.TrimSpace(req.Question) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "slug and question are required")
		return
	}

	answer, err := h.engine.AnswerForSlug(c.Request.Context(), req.Slug, req.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"answer": answer},
	})
}
