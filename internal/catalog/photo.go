package catalog

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

var photoColumns = []string{
	"id", "hash", "file_name", "size_on_disk_kib", "capture_date", "capture_timezone",
	"width", "height", "mime_type", "camera_model", "lens_model",
	"shutter_count", "focal_length_mm", "iso", "shutter_speed", "aperture_f_number",
}

func scanPhoto(row interface{ Scan(...any) error }) (Photo, error) {
	var p Photo
	err := row.Scan(
		&p.ID, &p.Hash, &p.FileName, &p.SizeOnDiskKiB, &p.CaptureDate, &p.CaptureTimezone,
		&p.Width, &p.Height, &p.MimeType, &p.CameraModel, &p.LensModel,
		&p.ShutterCount, &p.FocalLengthMM, &p.ISO, &p.ShutterSpeed, &p.ApertureFNumber,
	)
	return p, err
}

// CreatePhoto inserts new and returns the generated id. A duplicate hash
// surfaces as apierr.ErrConflict.
func (c *Catalog) CreatePhoto(ctx context.Context, new NewPhoto) (int64, error) {
	var id int64
	err := c.sq.Insert(photosTable).
		Columns(
			"hash", "file_name", "size_on_disk_kib", "capture_date", "capture_timezone",
			"width", "height", "mime_type", "camera_model", "lens_model",
			"shutter_count", "focal_length_mm", "iso", "shutter_speed", "aperture_f_number",
		).
		Values(
			new.Hash, new.FileName, new.SizeOnDiskKiB, new.CaptureDate, new.CaptureTimezone,
			new.Width, new.Height, new.MimeType, new.CameraModel, new.LensModel,
			new.ShutterCount, new.FocalLengthMM, new.ISO, new.ShutterSpeed, new.ApertureFNumber,
		).
		Suffix("RETURNING id").
		RunWith(c.db).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		return 0, classify("create_photo", err)
	}
	return id, nil
}

// CheckHash looks up a photo by its exact xxh3-128 hash. A miss returns
// (Photo{}, false, nil) rather than an error, per spec.md §4.A.
func (c *Catalog) CheckHash(ctx context.Context, hash string) (Photo, bool, error) {
	row := c.sq.Select(photoColumns...).From(photosTable).Where(sq.Eq{"hash": hash}).
		RunWith(c.db).QueryRowContext(ctx)
	p, err := scanPhoto(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Photo{}, false, nil
		}
		return Photo{}, false, classify("check_hash", err)
	}
	return p, true, nil
}

// PhotoFileName returns a single photo's file name, for internal/pathresolver.
func (c *Catalog) PhotoFileName(ctx context.Context, id int64) (string, error) {
	var name string
	err := c.sq.Select("file_name").From(photosTable).Where(sq.Eq{"id": id}).
		RunWith(c.db).QueryRowContext(ctx).Scan(&name)
	if err != nil {
		return "", classify("photo_file_name", err)
	}
	return name, nil
}

// GetPhotos batch-fetches by id. An empty slice returns an empty slice
// without touching the database.
func (c *Catalog) GetPhotos(ctx context.Context, ids []int64) ([]Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := c.sq.Select(photoColumns...).From(photosTable).Where(sq.Eq{"id": ids}).
		RunWith(c.db).QueryContext(ctx)
	if err != nil {
		return nil, classify("get_photos", err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, classify("get_photos", err)
		}
		out = append(out, p)
	}
	return out, classify("get_photos", rows.Err())
}

// DeletePhotos fetches then deletes each id atomically, returning the set
// actually removed, and also removes the corresponding thumbnail rows. An
// empty slice returns an empty slice without touching the database.
func (c *Catalog) DeletePhotos(ctx context.Context, ids []int64) ([]Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete_photos: %w", apierr.ErrInternal)
	}
	defer tx.Rollback()

	txq := c.sq.RunWith(tx)

	rows, err := txq.Select(photoColumns...).From(photosTable).Where(sq.Eq{"id": ids}).QueryContext(ctx)
	if err != nil {
		return nil, classify("delete_photos", err)
	}
	var found []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			rows.Close()
			return nil, classify("delete_photos", err)
		}
		found = append(found, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("delete_photos", err)
	}
	if len(found) == 0 {
		return nil, tx.Commit()
	}

	foundIDs := make([]int64, len(found))
	for i, p := range found {
		foundIDs[i] = p.ID
	}

	if _, err := txq.Delete(thumbnailsTable).Where(sq.Eq{"id": foundIDs}).ExecContext(ctx); err != nil {
		return nil, classify("delete_photos", err)
	}
	if _, err := txq.Delete(albumPhotosTable).Where(sq.Eq{"photo_id": foundIDs}).ExecContext(ctx); err != nil {
		return nil, classify("delete_photos", err)
	}
	if _, err := txq.Delete(photosTable).Where(sq.Eq{"id": foundIDs}).ExecContext(ctx); err != nil {
		return nil, classify("delete_photos", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete_photos: %w", apierr.ErrInternal)
	}
	return found, nil
}
