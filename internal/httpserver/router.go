package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"craftcrm/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	leadHandler *handler.LeadHandler,
	adminHandler *handler.AdminHandler,
	db *pgxpool.Pool,
	jwtSecret string,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware(), MetricsMiddleware())

	// Public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/projects", projectHandler.Create)
		auth.GET("/projects/:id", projectHandler.Get)
		auth.GET("/projects/:id/timeline", projectHandler.GetTimeline)
		auth.GET("/projects/:id/activities", projectHandler.GetActivities)
		auth.POST("/projects/:id/stage", projectHandler.ChangeStage)
		auth.POST("/projects/:id/substages/:substage_id/complete", projectHandler.CompleteSubstage)
		auth.POST("/projects/:id/substages/:substage_id/percentage", projectHandler.SetPercentage)
		auth.POST("/projects/:id/hold", projectHandler.SetHold)
		auth.POST("/projects/:id/comments", projectHandler.AddComment)
		auth.POST("/projects/:id/collaborators", projectHandler.AddCollaborator)
		auth.GET("/projects/:id/collaborators", projectHandler.ListCollaborators)

		auth.POST("/leads", leadHandler.Create)
		auth.GET("/leads/:id", leadHandler.Get)
		auth.GET("/leads/:id/activities", leadHandler.GetActivities)
		auth.POST("/leads/:id/stage", leadHandler.ChangeStage)
		auth.POST("/leads/:id/hold", leadHandler.SetHold)
		auth.POST("/leads/:id/comments", leadHandler.AddComment)
		auth.POST("/leads/:id/convert", leadHandler.Convert)

		auth.POST("/admin/outbox/:id/replay", adminHandler.ReplayOutboxEvent)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
