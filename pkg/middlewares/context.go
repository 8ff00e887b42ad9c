package middlewares

import (
	"Chalkboard/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// This middleware populates every incoming request's context with an unique ReqID.
// Loggers derived via log.WithCtx carry the ReqID, which helps to debug issues
// happening for a request in the handler chain.
func UniqueIDMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		rqId, uuiderr := uuid.NewRandom()
		if uuiderr != nil {
			logger.Error().Err(uuiderr).Msg("Error during generating UUID for ReqID.")
		} else {
			gctx.Set("ReqID", rqId.String())
		}
		gctx.Next()
	}
}

// This middleware stamps every response with an unique CorrelationID header.
// Useful to match a client-reported issue with a chain of server side events.
func CorrelationMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		correlationID := xid.New().String()
		// Setting the correlationID in request's context
		gctx.Set("correlation_id", correlationID)
		// Setting the correlationID to response header
		gctx.Writer.Header().Set("X-Correlation-ID", correlationID)
		gctx.Next()
	}
}
