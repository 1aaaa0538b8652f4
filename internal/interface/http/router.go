package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/textcraft/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = cfg.Limits.MaxFileBytes + uploadOverheadBytes
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/")
	api.Use(
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		bearerAuthMiddleware(cfg.Auth.JWTSecret),
	)
	{
		api.POST("/predict", handler.Summarize)
		api.POST("/paraphrase", handler.Paraphrase)
		api.POST("/upload", handler.Upload)
		api.GET("/history", handler.History)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
