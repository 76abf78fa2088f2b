package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/api/middleware"
	"github.com/ashwinbm/docquiz/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	ingestService *service.IngestService,
	chatService *service.ChatService,
	quizService *service.QuizService,
	log *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	handler := NewHandler(ingestService, chatService, quizService, log)
	handler.RegisterRoutes(r)

	return r
}
