// The main file of Chalkboard.

package main

import (
	"Chalkboard/internal/auth"
	"Chalkboard/internal/config"
	"Chalkboard/internal/illustration"
	"Chalkboard/internal/sse"
	"Chalkboard/pkg/cleanup"
	"Chalkboard/pkg/db"
	"Chalkboard/pkg/log"
	"Chalkboard/pkg/validations"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"
)

var (
	// Indicates the current version of Chalkboard.
	Version = "1.0.0"
	// Address and Port to be used by gin.
	srvaddr, srvport string
)

func main() {
	// Load dev env variables if ENV was not set externally.
	if len(os.Getenv("ENV")) == 0 {
		config.LoadDevConfig()
	}
	logger := log.New(Version)
	logger.Info().Msg(fmt.Sprintf("Welcome to Chalkboard: v%s", Version))
	logger.Info().Msg(fmt.Sprintf("Chalkboard Environment: %s", os.Getenv("ENV")))

	ctx := context.Background()

	// Initializing and verifying the DB connection.
	dbConnWrp, dberr := db.NewDbConnection(ctx, logger)
	if dberr != nil {
		logger.Fatal().Err(dberr).Msg("Couldn't initialize the Redis client.")
	}
	if pingerr := dbConnWrp.CheckDbConnection(ctx, logger); pingerr != nil {
		logger.Fatal().Err(pingerr).Msg("Redis client couldn't PING the redis-server.")
	}

	// Fetching addr and port depending upon env flag.
	srvaddr, srvport = os.Getenv("SRV_ADDR"), os.Getenv("SRV_PORT")
	// This is the preferred mode used by gin server in DEV environment.
	if os.Getenv("ENV") == "DEV" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initializing validator and registering custom validation tags.
	govalidator.SetFieldsRequiredByDefault(true)
	validations.RegisterCustomValidationTags(ctx, logger)

	// Initializing the gin server.
	server := gin.New()

	// Forcing gin to use custom Logger instead of the default one.
	server.Use(log.LoggerGinExtension(logger))
	server.Use(gin.Recovery())

	// Building the dependencies of the storytime illustration pipeline.
	registry := sse.NewRegistry(sse.NewRepository(dbConnWrp), logger)
	imageClient := illustration.NewClient(os.Getenv("IMAGE_API_URL"), os.Getenv("IMAGE_API_KEY"), logger)
	illustrationService := illustration.NewService(registry, imageClient, logger)
	authWithToken := auth.AuthMiddleware(logger, os.Getenv("SESSION_JWT_SECRET"))

	// Running Router() which routes all of the REST API groups and paths.
	Router(server, registry, illustrationService, authWithToken, logger)

	// Running the server with defined addr and port.
	srv := &http.Server{
		Addr:    srvaddr + ":" + srvport,
		Handler: server,
	}

	// ListenAndServe is a blocking operation, putting it a goroutine
	go func() {
		logger.Info().Msg(fmt.Sprintf("Chalkboard service running at: %s", srvaddr+":"+srvport))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Error in ListenAndServe()")
		}
	}()

	// Graceful shutdown of Chalkboard server triggered due to system interruptions.
	wait := cleanup.GracefulShutdown(ctx, logger, 5*time.Second, map[string]cleanup.Operation{
		"SSE-registry": func(ctx context.Context) error {
			return registry.Cleanup(ctx)
		},
		"Redis-server": func(ctx context.Context) error {
			return dbConnWrp.CloseDbConnection(ctx)
		},
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	<-wait
}
