package catalog

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// AddPhotoToAlbum files every id in photoIDs under albumID in one
// statement. A photo may belong to at most one album at a time (spec.md
// §4.A); the caller is expected to have removed any prior edge first,
// since the edges table has no uniqueness constraint on photo_id alone
// to enforce that for them.
func (c *Catalog) AddPhotoToAlbum(ctx context.Context, albumID int32, photoIDs []int64) error {
	if len(photoIDs) == 0 {
		return nil
	}
	insert := c.sq.Insert(albumPhotosTable).Columns("album_id", "photo_id")
	for _, photoID := range photoIDs {
		insert = insert.Values(albumID, photoID)
	}
	_, err := insert.RunWith(c.db).ExecContext(ctx)
	return classify("add_photo_to_album", err)
}

// RemovePhotoFromAlbum deletes the filing edge for every id in photoIDs,
// leaving them unfiled.
func (c *Catalog) RemovePhotoFromAlbum(ctx context.Context, photoIDs []int64) error {
	if len(photoIDs) == 0 {
		return nil
	}
	_, err := c.sq.Delete(albumPhotosTable).Where(sq.Eq{"photo_id": photoIDs}).
		RunWith(c.db).ExecContext(ctx)
	return classify("remove_photo_from_album", err)
}

// AddAlbumToAlbum files every id in childIDs under parentID in one
// statement. Unlike MoveAlbum, this does not first clear any existing
// parent edge on the children: callers that mean "move" should call
// MoveAlbum instead, which is single-child and edge-replacing.
func (c *Catalog) AddAlbumToAlbum(ctx context.Context, parentID int32, childIDs []int32) error {
	if len(childIDs) == 0 {
		return nil
	}
	insert := c.sq.Insert(albumAlbumsTable).Columns("parent_id", "child_id")
	for _, childID := range childIDs {
		insert = insert.Values(parentID, childID)
	}
	_, err := insert.RunWith(c.db).ExecContext(ctx)
	return classify("add_album_to_album", err)
}

// RemoveAlbumFromAlbum deletes the parent edge for every id in childIDs,
// promoting them to root albums.
func (c *Catalog) RemoveAlbumFromAlbum(ctx context.Context, childIDs []int32) error {
	if len(childIDs) == 0 {
		return nil
	}
	_, err := c.sq.Delete(albumAlbumsTable).Where(sq.Eq{"child_id": childIDs}).
		RunWith(c.db).ExecContext(ctx)
	return classify("remove_album_from_album", err)
}

// GetAlbumByPhoto returns the album a photo is filed under, or
// (0, false, nil) when the photo is unfiled.
func (c *Catalog) GetAlbumByPhoto(ctx context.Context, photoID int64) (int32, bool, error) {
	var albumID int32
	err := c.db.QueryRowContext(ctx, `
		SELECT album_id FROM `+albumPhotosTable+` WHERE photo_id = $1
	`, photoID).Scan(&albumID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, classify("get_album_by_photo", err)
	}
	return albumID, true, nil
}

// GetPhotosInAlbum lists every photo filed directly under albumID.
func (c *Catalog) GetPhotosInAlbum(ctx context.Context, albumID int32) ([]Photo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+photoJoinCols+`
		FROM `+photosTable+` p
		JOIN `+albumPhotosTable+` e ON e.photo_id = p.id
		WHERE e.album_id = $1
	`, albumID)
	if err != nil {
		return nil, classify("get_photos_in_album", err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, classify("get_photos_in_album", err)
		}
		out = append(out, p)
	}
	return out, classify("get_photos_in_album", rows.Err())
}

// GetPhotosUnfiled lists every photo with no album edge at all, computed
// via a NOT EXISTS subquery rather than a sentinel album id.
func (c *Catalog) GetPhotosUnfiled(ctx context.Context) ([]Photo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+photoJoinCols+`
		FROM `+photosTable+` p
		WHERE NOT EXISTS (SELECT 1 FROM `+albumPhotosTable+` e WHERE e.photo_id = p.id)
	`)
	if err != nil {
		return nil, classify("get_photos_unfiled", err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, classify("get_photos_unfiled", err)
		}
		out = append(out, p)
	}
	return out, classify("get_photos_unfiled", rows.Err())
}

// photoJoinCols renders photoColumns aliased under "p" for the hand-written
// joins above, where squirrel's builder would otherwise need per-column
// aliasing support it doesn't have.
var photoJoinCols = "p." + strings.Join(photoColumns, ", p.")
