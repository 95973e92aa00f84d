// Package api wires the public JSON endpoints onto a gin engine.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handlers "github.com/sreejitadass/ContentCrafter/internal/http/api/handlers"
	"github.com/sreejitadass/ContentCrafter/internal/ratelimit"
	"github.com/sreejitadass/ContentCrafter/internal/workflow"
)

// Deps carries the shared dependencies handlers need.
type Deps struct {
	DB            *gorm.DB               // Database handle.
	Orchestrator  *workflow.Orchestrator // Generate-and-charge workflow.
	Limiter       *ratelimit.Manager     // Per-user generation rate limiter.
	JWTSecret     string                 // Session token secret; empty disables verification.
	InitialPoints int64                  // Points granted on first user creation.
}

// RegisterRoutes registers all public routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	apiGroup := r.Group("/api")
	apiGroup.Use(SessionMiddleware(deps.JWTSecret))

	userHandler := handlers.NewUserHandler(deps.DB, deps.InitialPoints)
	apiGroup.POST("/create-or-update-user", userHandler.CreateOrUpdate)
	apiGroup.GET("/get-user-points", userHandler.GetPoints)
	apiGroup.POST("/update-user-points", userHandler.UpdatePoints)

	contentHandler := handlers.NewContentHandler(deps.DB)
	apiGroup.POST("/save-generated-content", contentHandler.Save)
	apiGroup.GET("/get-generated-content-history", contentHandler.History)

	generateHandler := handlers.NewGenerateHandler(deps.Orchestrator, deps.Limiter)
	apiGroup.POST("/generate-content", generateHandler.Generate)
}
