package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/domain"
	"github.com/ashwinbm/docquiz/internal/service"
)

// Handler handles the public HTTP API
type Handler struct {
	ingest *service.IngestService
	chat   *service.ChatService
	quiz   *service.QuizService
	log    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(ingest *service.IngestService, chat *service.ChatService, quiz *service.QuizService, log *zap.Logger) *Handler {
	return &Handler{ingest: ingest, chat: chat, quiz: quiz, log: log}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Health)
	r.POST("/upload", h.Upload)
	r.POST("/chat", h.Chat)
	r.POST("/generate-mcq", h.GenerateMCQ)
	r.POST("/submit-mcq", h.SubmitMCQ)
	r.DELETE("/session/:session_id", h.DeleteSession)
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "PDF RAG API is running"})
}

// Upload accepts a multipart PDF upload and creates a session
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file field"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}

	resp, err := h.ingest.Upload(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Chat answers a question against a session's document
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.chat.Chat(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateMCQ generates a quiz over a session's document
func (h *Handler) GenerateMCQ(c *gin.Context) {
	var req domain.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.quiz.Generate(c.Request.Context(), req.SessionID, req.NumQuestions)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitMCQ grades a quiz submission
func (h *Handler) SubmitMCQ(c *gin.Context) {
	var req domain.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.quiz.Submit(c.Request.Context(), req.TestID, req.Answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSession removes a session and all of its data
func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.ingest.Delete(c.Request.Context(), sessionID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.DeleteSessionResponse{Message: "Session deleted successfully"})
}

// fail maps service errors onto the HTTP error contract. Client-input
// errors keep their detail text; upstream failures get a fixed message so
// provider internals never leak.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrEmptyDocument):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrAlreadyGraded):
		c.JSON(http.StatusConflict, gin.H{"detail": "quiz has already been graded"})
	case errors.Is(err, domain.ErrGenerationMalformed):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "quiz generation returned malformed output"})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "upstream provider error"})
	default:
		h.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
