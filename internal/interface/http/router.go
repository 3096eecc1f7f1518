package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tripplanner/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	api := router.Group("/api/v1")
	{
		api.GET("/healthz", handler.Health)
		api.POST("/travel/estimate", handler.EstimateTravel)

		api.POST("/trips", handler.PlanTrip)
		api.GET("/trips/:id", handler.GetTrip)
		api.GET("/trips/:id/explain", handler.Explain)
		api.GET("/trips/:id/feasibility", handler.Feasibility)
		api.GET("/trips/:id/grounding", handler.Grounding)

		owned := api.Group("/trips/:id", requireTripHandle(handler.sessions))
		owned.POST("/days/:day/pace", handler.EditDayPace)
		owned.POST("/weather-adjustment", handler.AdjustForWeather)
		owned.POST("/export", handler.Export)

		if handler.commands != nil {
			api.POST("/commands", handler.commands.Execute)
			api.POST("/commands/voice", handler.commands.Voice)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withConflictRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
