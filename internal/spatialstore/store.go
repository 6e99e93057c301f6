// Package spatialstore implements the Spatial Store (SS) query surface
// of spec §6.2: a read-only abstraction over the road graph, GVI point
// layer, per-month DGVI table, and static transit tables, backed by
// PostgreSQL/PostGIS.
//
// Grounded on the teacher's internal/db/connection.go (pool lifecycle)
// and internal/graph/{memory,builder}.go (the PostGIS SQL idiom: ST_X,
// ST_Y, ST_Distance, ST_DWithin, ST_SetSRID, ST_MakePoint, ST_MakeLine,
// ST_LineInterpolatePoint).
package spatialstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passbi/routecore/internal/apperr"
)

// Store is the concrete, pgx-backed implementation of the SS query
// surface. A single Store is shared across concurrent planning
// requests; every method acquires a pool connection for the duration
// of its query and releases it on every exit path, per spec §5.
type Store struct {
	pool  *pgxpool.Pool
	graph *graphCache
}

// New builds a Store over an already-initialized connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:  pool,
		graph: newGraphCache(),
	}
}

func wrapQueryErr(err error, detail string) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.TransientUpstream, detail, err)
}

// HealthCheck is a thin pass-through used by internal/httpapi's /health
// endpoint, grounded on the teacher's db.HealthCheck.
func (s *Store) HealthCheck(ctx context.Context) error {
	var version string
	err := s.pool.QueryRow(ctx, "SELECT PostGIS_Version()").Scan(&version)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "PostGIS unavailable", err)
	}
	return nil
}
