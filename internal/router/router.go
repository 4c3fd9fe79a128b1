package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physiotrack/backend/internal/handler"
	"physiotrack/backend/internal/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Session  *handler.SessionHandler
	Template *handler.TemplateHandler
	Insight  *handler.InsightHandler
}

func New(tokens middleware.TokenParser, h Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	api.GET("/session/events", middleware.Auth(tokens, true), h.Session.Events)

	protected := api.Group("")
	protected.Use(middleware.Auth(tokens, false))
	protected.GET("/me", h.Auth.Me)

	session := protected.Group("/session")
	session.GET("/state", h.Session.GetState)
	session.POST("/start", h.Session.Start)
	session.POST("/exercise/complete", h.Session.CompleteExercise)
	session.POST("/complete", h.Session.Complete)
	session.POST("/cancel", h.Session.Cancel)
	session.GET("/history", h.Session.GetHistory)

	templates := protected.Group("/templates")
	templates.GET("", h.Template.List)
	templates.POST("", h.Template.Create)
	templates.GET("/:id", h.Template.Get)
	templates.DELETE("/:id", h.Template.Delete)

	protected.GET("/pain", h.Insight.ListPain)
	protected.POST("/pain", h.Insight.RecordPain)
	protected.GET("/stats", h.Insight.GetStats)
	protected.POST("/recommendations", h.Insight.Recommend)

	return engine
}
