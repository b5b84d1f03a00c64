package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mbevents/backend/internal/token"
	"github.com/mbevents/backend/internal/transport/http/handler"
	"github.com/mbevents/backend/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, eventHandler *handler.EventHandler, tokens *token.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "MB Events server"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/register", authHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.POST("/forgot-password", authHandler.ForgotPassword)
	v1.POST("/reset-password", authHandler.ResetPassword)

	events := v1.Group("/events")
	events.GET("/upcoming", eventHandler.Upcoming)
	events.GET("/free", eventHandler.Free)

	authed := events.Group("", middleware.Auth(tokens))
	authed.POST("", eventHandler.Create)
	authed.POST("/:id/poster", eventHandler.AttachPoster)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})

	return r
}
