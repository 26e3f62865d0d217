package catalog

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// CreateThumbnail inserts a one-to-one thumbnail row for photoID. Callers
// already hold the photo's own id; attaching a second thumbnail to the same
// photo surfaces as apierr.ErrConflict via the primary key.
func (c *Catalog) CreateThumbnail(ctx context.Context, photoID int64, path string) error {
	_, err := c.sq.Insert(thumbnailsTable).Columns("id", "thumbnail_path").
		Values(photoID, path).RunWith(c.db).ExecContext(ctx)
	return classify("create_thumbnail", err)
}

// GetThumbnail returns (Thumbnail{}, false, nil) when photoID has none.
func (c *Catalog) GetThumbnail(ctx context.Context, photoID int64) (Thumbnail, bool, error) {
	var t Thumbnail
	err := c.sq.Select("id", "thumbnail_path").From(thumbnailsTable).Where(sq.Eq{"id": photoID}).
		RunWith(c.db).QueryRowContext(ctx).Scan(&t.PhotoID, &t.ThumbnailPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return Thumbnail{}, false, nil
		}
		return Thumbnail{}, false, classify("get_thumbnail", err)
	}
	return t, true, nil
}

// DeleteThumbnails removes thumbnail rows for the given photo ids. An empty
// slice is a no-op.
func (c *Catalog) DeleteThumbnails(ctx context.Context, photoIDs []int64) error {
	if len(photoIDs) == 0 {
		return nil
	}
	_, err := c.sq.Delete(thumbnailsTable).Where(sq.Eq{"id": photoIDs}).RunWith(c.db).ExecContext(ctx)
	return classify("delete_thumbnails", err)
}
