// Initialization of the Redis client to be used internally in Chalkboard.

package db

import (
	"Chalkboard/pkg/log"
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
)

// RedisDB represents a redis client connection to be used internally in Chalkboard.
type RedisDB struct {
	client *redis.Client
}

// Global DB instance to be used all over Chalkboard.
var globalDbClient *RedisDB

// sync.Once singleton is used to make sure configs and DB instantiation is done only once.
var once sync.Once

// Client returns the redis client wrapped by RedisDB.
func (db *RedisDB) Client() *redis.Client {
	return db.client
}

// Returns a new Redis DB connection wrapped up by the RedisDB struct.
func NewDbConnection(ctx context.Context, logger log.Logger) (*RedisDB, error) {
	var enverr error
	once.Do(func() {
		addr := os.Getenv("REDIS_ADDR")
		port := os.Getenv("REDIS_PORT")
		pwd := os.Getenv("REDIS_PASSWORD")
		if addr == "" || port == "" {
			enverr = errors.New("improper Environment variables")
			return
		}
		dbNumber, prserr := strconv.Atoi(strings.TrimSpace(os.Getenv("REDIS_DB_NUMBER")))
		if prserr != nil {
			// Couldn't convert to int
			enverr = prserr
			return
		}

		// Initializing a connection to Redis-server
		client := redis.NewClient(&redis.Options{
			Addr:     addr + ":" + port,
			Password: pwd,
			DB:       dbNumber,
		})
		// Initializing globalDbClient once
		globalDbClient = &RedisDB{client: client}
	})
	return globalDbClient, enverr
}

// Helper to check connection status of redis client to redis-server.
// Equivalent to a PING request on redis-server, returns nil on PONG.
func (db *RedisDB) CheckDbConnection(ctx context.Context, logger log.Logger) error {
	logger.WithCtx(ctx).Info().Msg("Checking DB Connection . . .")
	// Pinging the Redis-server to check connection status
	cnterr := db.Client().Ping(ctx).Err()
	if cnterr != nil {
		// Most likely, DB connection failure
		return cnterr
	}
	// Connection successful
	logger.WithCtx(ctx).Info().Msg("Connection to DB Successful")
	return nil
}

// Helper to close the RedisDB client, should be called before closing the server.
func (db *RedisDB) CloseDbConnection(ctx context.Context) error {
	return db.Client().Close()
}
