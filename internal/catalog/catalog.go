// Package catalog is the persistent store of photos, albums, the
// parent->child album edges, the photo->album edges, and thumbnail
// records. It exposes typed queries over a *sql.DB and classifies every
// failure through internal/apierr so callers can distinguish not-found
// from conflict from corruption without inspecting driver-specific error
// values.
//
// Connection-pool construction and environment loading are out of scope
// here (spec.md §1); New takes an already-opened *sql.DB, mirroring the
// teacher's backend/mediavfs.Fs which receives its *sql.DB once and then
// only ever queries it.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fubuki4649/suisai-server/internal/apierr"
	"github.com/fubuki4649/suisai-server/internal/logging"
)

const (
	photosTable       = "photos"
	albumsTable       = "albums"
	thumbnailsTable   = "thumbnails"
	albumPhotosTable  = "album_photo_edges"
	albumAlbumsTable  = "album_album_edges"
	uniqueViolation   = "unique_violation"
	albumNamePgConstr = "albums_parent_id_name_key"
)

// Catalog is the persistent store described in spec.md §4.A.
type Catalog struct {
	db  *sql.DB
	sq  sq.StatementBuilderType
	log *logrus.Entry
}

// New wraps an already-open database handle. The caller owns pool tuning
// (SetMaxOpenConns etc.) and lifecycle.
func New(db *sql.DB) *Catalog {
	return &Catalog{
		db:  db,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(db),
		log: logging.For("catalog"),
	}
}

// classify turns a raw database/sql or lib/pq error into one of the
// apierr sentinels, wrapping with context so the message still says what
// failed.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == uniqueViolation {
		return fmt.Errorf("%s: %w", op, apierr.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, apierr.ErrInternal)
}

// checkOneRowAffected turns a zero-row UPDATE/DELETE result into
// apierr.ErrNotFound; more than one row affected is a corrupted catalog.
func checkOneRowAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, apierr.ErrInternal)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s: %w", op, apierr.ErrNotFound)
	default:
		return fmt.Errorf("%s: affected %d rows: %w", op, n, apierr.ErrCorruption)
	}
}
