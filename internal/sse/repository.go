// sse repository mirrors the set of connected (SSE) client IDs into the DB.
// The in-memory registry stays authoritative, the mirror only helps ops to see
// how many portal tabs are listening and would seed a reload of the server.

package sse

import (
	"Chalkboard/internal/errors"
	"Chalkboard/pkg/db"
	"Chalkboard/pkg/log"
	"context"
)

const clientSetKey = "sse_clients"

type Repository interface {
	// AddClient adds an incoming (SSE) client ID to the DB mirror.
	AddClient(ctx context.Context, logger log.Logger, clientID string) error
	// RemoveClient removes a disconnected SSE client ID from the DB mirror.
	RemoveClient(ctx context.Context, logger log.Logger, clientID string) error
	// Clear wipes the whole mirror, a server restart drops every live connection.
	Clear(ctx context.Context, logger log.Logger) error
}

// repository struct of sse Repository.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of sse repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns nil if the client ID got successfully added into the DB.
func (r repository) AddClient(ctx context.Context, logger log.Logger, clientID string) error {
	dberr := r.db.Client().SAdd(ctx, clientSetKey, clientID).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of SAdd in sse.AddClient")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns nil if the client ID got successfully removed from the DB.
func (r repository) RemoveClient(ctx context.Context, logger log.Logger, clientID string) error {
	dberr := r.db.Client().SRem(ctx, clientSetKey, clientID).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of SRem in sse.RemoveClient")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns nil if the whole mirror got successfully wiped.
func (r repository) Clear(ctx context.Context, logger log.Logger) error {
	dberr := r.db.Client().Del(ctx, clientSetKey).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of Del in sse.Clear")
		return errors.InternalServerError("")
	}
	return nil
}
