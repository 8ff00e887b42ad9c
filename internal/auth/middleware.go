// Auth middleware is used to validate the session JWT sent via the Authorization header.
// Chalkboard delegates identity to an external provider, the provider issues HS256
// session tokens signed with a secret shared through env. This verification is
// needed for endpoints which require an authenticated portal user.

package auth

import (
	"Chalkboard/internal/errors"
	"Chalkboard/pkg/log"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// This middleware verifies and validates the incoming bearer token.
// Blocks the request from going further into other handlers if the token is invalid.
func AuthMiddleware(logger log.Logger, secret string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Extract token from header
		token := fetchTokenFromHeader(gctx)
		if token == "" {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized(""))
			return
		}
		// Parse the token with the shared session secret
		vrftoken, valerr := parseIntoJWT(gctx, logger, secret, token)
		if valerr != nil || !vrftoken.Valid {
			// Abort the call chain for the request here as the user is unauthenticated
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized(""))
			return
		}
		tokenclaims, ok := vrftoken.Claims.(jwt.MapClaims)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in AuthMiddleware")
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// The identity provider always stamps the portal username claim,
		// a token without it is not one of ours
		username, ok := tokenclaims["username"].(string)
		if !ok || username == "" {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized(""))
			return
		}
		// Set Username in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("Username", username)
		gctx.Next()
	}
}

// Helper to fetch the bearer token string from the Authorization header.
func fetchTokenFromHeader(gctx *gin.Context) string {
	header := gctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Helper to parse the raw token string into a verified JWT.
func parseIntoJWT(gctx *gin.Context, logger log.Logger, secret string, token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			err := errors.New(fmt.Sprintf("Unexpected signing method found: %s", t.Header["alg"]))
			logger.WithCtx(gctx).Error().Err(err).Msg("")
			return nil, err
		}
		return []byte(secret), nil
	})
}
