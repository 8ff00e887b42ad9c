// Mock helpers required in Chalkboard tests are all here.

package test

import (
	"Chalkboard/pkg/middlewares"
	"sync"

	"github.com/gin-gonic/gin"
)

// Global instance of gin MockRouter to be used during API testing.
var testRouter *gin.Engine

// Singleton to make sure testRouter is initialized only once.
var once sync.Once

func MockRouter() *gin.Engine {
	once.Do(func() {
		// Initializing the gin test server
		gin.SetMode(gin.TestMode)
		testRouter = gin.New()
		testRouter.Use(middlewares.CORSMiddleware("*")) // CORS middleware which allows request from all origin
	})
	return testRouter
}

// Default headers to be passed with test requests.
func MockHeader() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}
