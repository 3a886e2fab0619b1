package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ragchat/internal/models"
	"ragchat/internal/service/chat"
	"ragchat/internal/service/document"
	"ragchat/internal/session"
)

// DocumentService is the upload/listing surface the handlers depend on.
type DocumentService interface {
	Upload(ctx context.Context, filename string, content []byte) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
}

// ChatService runs one conversation turn.
type ChatService interface {
	HandleTurn(ctx context.Context, question string, documentIDs []string, sessionID string) (*chat.TurnResult, error)
}

// Handler wires HTTP routes to the document pipeline, the conversation
// orchestrator and the session manager.
type Handler struct {
	documents DocumentService
	chat      ChatService
	sessions  *session.Manager
}

// NewHandler constructs a Handler instance.
func NewHandler(documents DocumentService, chatService ChatService, sessions *session.Manager) *Handler {
	return &Handler{
		documents: documents,
		chat:      chatService,
		sessions:  sessions,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	api := router.Group("/api")
	api.POST("/upload-file", h.uploadFile)
	api.GET("/files", h.listFiles)
	api.POST("/create-session", h.createSession)
	api.POST("/chat", h.chatTurn)
	api.GET("/sessions", h.listSessions)
	api.DELETE("/session/:session_id", h.deleteSession)
	api.GET("/session/:session_id/info", h.sessionInfo)
	api.GET("/session/:session_id/history", h.sessionHistory)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) uploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	content, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
		return
	}
	doc, err := h.documents.Upload(c.Request.Context(), filepath.Base(file.Filename), content)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrInvalidFileType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, document.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded and indexed successfully",
		"file_id":  doc.ID,
		"filename": doc.Filename,
	})
}

func (h *Handler) listFiles(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = make([]models.Document, 0)
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) createSession(c *gin.Context) {
	created, err := h.sessions.CreateSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": created.SessionID,
		"message":    "Chat session created successfully",
	})
}

type chatRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
	SessionID   string   `json:"session_id"`
}

func (h *Handler) chatTurn(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	result, err := h.chat.HandleTurn(c.Request.Context(), req.Question, req.DocumentIDs, req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":     result.Answer,
		"sources":    result.Sources,
		"session_id": result.SessionID,
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	infos, err := h.sessions.ListSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if infos == nil {
		infos = make([]models.SessionInfo, 0)
	}
	c.JSON(http.StatusOK, infos)
}

func (h *Handler) deleteSession(c *gin.Context) {
	existed, err := h.sessions.DeleteSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *Handler) sessionInfo(c *gin.Context) {
	info, err := h.sessions.GetSessionInfo(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) sessionHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	history, err := h.sessions.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if history == nil {
		history = make([]models.Message, 0)
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   history,
	})
}
