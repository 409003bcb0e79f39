// Package router wires the docqa HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/pkg/middleware"
)

// Register installs middleware and the versioned API routes on the engine.
func Register(engine *gin.Engine, users *handler.UserHandler, documents *handler.DocumentHandler, queries *handler.QueryHandler) {
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	{
		u := v1.Group("/users")
		{
			u.POST("", users.Create)
			u.GET("", users.List)
			u.GET("/:id", users.Get)
		}

		d := v1.Group("/documents")
		{
			d.POST("/upload", documents.Upload)
			d.GET("/user/:user_id", documents.ListByUser)
			d.GET("/:id", documents.Get)
			d.DELETE("/:id", documents.Delete)
		}

		q := v1.Group("/query")
		{
			q.POST("", queries.Query)
			q.GET("/history/:user_id", queries.History)
		}
	}
}
