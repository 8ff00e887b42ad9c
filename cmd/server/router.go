// List of all REST API endpoints being used by Chalkboard can be found here.

package main

import (
	"Chalkboard/internal/illustration"
	"Chalkboard/internal/sse"
	"Chalkboard/pkg/log"
	"Chalkboard/pkg/middlewares"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func Router(
	router *gin.Engine,
	registry sse.Service,
	illustrationService illustration.Service,
	authWithToken gin.HandlerFunc,
	logger log.Logger,
) {
	// Cross-origin requests are allowed from the portal origin only.
	router.Use(middlewares.CORSMiddleware(os.Getenv("ALLOWED_ORIGIN")))
	router.Use(middlewares.UniqueIDMiddleware(logger))
	router.Use(middlewares.CorrelationMiddleware(logger))

	// This is the route to default path
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Chalkboard!")
	})
	// The storytime page holding the EventSource client.
	router.StaticFile("/storytime", "./web/static/storytime.html")

	sse.APIHandlers(router, registry, middlewares.SSEHeadersMiddleware(), logger)
	illustration.APIHandlers(router, illustrationService, authWithToken, logger)
}
