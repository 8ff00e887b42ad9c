// Exposes the REST APIs related to storytime illustrations in Chalkboard.

package illustration

import (
	"Chalkboard/internal/entity"
	"Chalkboard/internal/errors"
	"Chalkboard/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The webhook's caller is a voice agent which speaks the message field
// aloud, so it has to read as an apology, not as a stack trace.
const generationFailedMessage = "I'm sorry, I couldn't draw a picture for this part of the story. Let's keep going and try again in a moment."

// Registers the REST API handlers related to internal package illustration onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithToken gin.HandlerFunc, logger log.Logger) {
	// Inbound callback from the voice platform, deliberately unauthenticated.
	router.POST("/webhook/elevenlabs/story-illustration", storyIllustrationHandler(service, logger))

	imageGroup := router.Group("/api/images")
	{
		imageGroup.POST("/generate", authWithToken, generateHandler(service, logger))
		// Frontend variant of the webhook path, same semantics.
		imageGroup.POST("/generate-for-story", storyIllustrationHandler(service, logger))
	}
}

// storyIllustrationHandler ingests story context, runs the generation
// pipeline and reports the outcome to the caller.
func storyIllustrationHandler(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// The body is optional and loosely typed, a missing or malformed
		// body simply means every context field falls back to its default.
		var sctx entity.StoryContext
		if binderr := gctx.ShouldBindJSON(&sctx); binderr != nil {
			logger.WithCtx(gctx).Debug().Err(binderr).Msg("Webhook carried no usable story context")
		}

		imageURL, err := service.generateForStory(gctx, sctx)
		if err != nil {
			gctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   err.Error(),
				"message": generationFailedMessage,
			})
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"success":   true,
			"image_url": imageURL,
			"message":   "Your storytime illustration is ready.",
		})
	}
}

// generateHandler serves the authenticated direct generation path.
// requires auth to access.
func generateHandler(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var request GenerateRequest
		if binderr := gctx.ShouldBindJSON(&request); binderr != nil {
			// Serialization error
			gctx.JSON(http.StatusBadRequest, errors.BadRequest(""))
			return
		}

		imageURL, err := service.generate(gctx, request)
		if err != nil {
			// Validation errors carry their own status, everything else is a 500
			if errresp, ok := err.(errors.ErrorResponse); ok {
				gctx.JSON(errresp.Status, errresp)
				return
			}
			gctx.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"imageUrl": imageURL,
		})
	}
}
