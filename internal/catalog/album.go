package catalog

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

func scanAlbum(row interface{ Scan(...any) error }) (Album, error) {
	var a Album
	err := row.Scan(&a.ID, &a.Name)
	return a, err
}

// CreateAlbum inserts album under album.ParentID, or under no parent when
// ParentID is nil (a root album). albums carries a denormalized parent_id
// column, guarded by the albumNamePgConstr unique constraint on
// (parent_id, name), purely so this insert has a conflict target to race
// against: album_album_edges remains the source of truth every other
// query in this package reads the tree through. The insert is a no-op on
// a duplicate (parent_id, name) pair: rowsAffected is 0 and newID is the
// id of the existing row, letting the caller tell "created" from
// "already exists" without treating the latter as apierr.ErrInternal.
func (c *Catalog) CreateAlbum(ctx context.Context, album NewAlbum) (rowsAffected int64, newID int32, err error) {
	err = c.db.QueryRowContext(ctx, `
		INSERT INTO `+albumsTable+` (name, parent_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT `+albumNamePgConstr+` DO NOTHING
		RETURNING id
	`, album.Name, album.ParentID).Scan(&newID)

	switch {
	case err == nil:
		// fall through to edge insert below
	case errors.Is(err, sql.ErrNoRows):
		lookupErr := c.db.QueryRowContext(ctx, `
			SELECT id FROM `+albumsTable+` WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2
		`, album.Name, album.ParentID).Scan(&newID)
		if lookupErr != nil {
			return 0, 0, classify("create_album", lookupErr)
		}
		return 0, newID, nil
	default:
		return 0, 0, classify("create_album", err)
	}

	if album.ParentID != nil {
		if _, err := c.sq.Insert(albumAlbumsTable).Columns("parent_id", "child_id").
			Values(*album.ParentID, newID).RunWith(c.db).ExecContext(ctx); err != nil {
			return 0, 0, classify("create_album", err)
		}
	}
	return 1, newID, nil
}

// GetAlbums batch-fetches by id.
func (c *Catalog) GetAlbums(ctx context.Context, ids []int32) ([]Album, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := c.sq.Select("id", "name").From(albumsTable).Where(sq.Eq{"id": ids}).
		RunWith(c.db).QueryContext(ctx)
	if err != nil {
		return nil, classify("get_albums", err)
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, classify("get_albums", err)
		}
		out = append(out, a)
	}
	return out, classify("get_albums", rows.Err())
}

// GetRootAlbums returns every album that has no parent edge, computed via a
// NOT EXISTS subquery rather than a sentinel parent id.
func (c *Catalog) GetRootAlbums(ctx context.Context) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT a.id, a.name FROM `+albumsTable+` a
		WHERE NOT EXISTS (SELECT 1 FROM `+albumAlbumsTable+` e WHERE e.child_id = a.id)
	`)
	if err != nil {
		return nil, classify("get_root_albums", err)
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, classify("get_root_albums", err)
		}
		out = append(out, a)
	}
	return out, classify("get_root_albums", rows.Err())
}

// AlbumName returns a single album's name, for internal/pathresolver.
func (c *Catalog) AlbumName(ctx context.Context, id int32) (string, error) {
	var name string
	err := c.sq.Select("name").From(albumsTable).Where(sq.Eq{"id": id}).
		RunWith(c.db).QueryRowContext(ctx).Scan(&name)
	if err != nil {
		return "", classify("album_name", err)
	}
	return name, nil
}

// AlbumParent returns the parent album id, or (0, false, nil) for a root
// album.
func (c *Catalog) AlbumParent(ctx context.Context, id int32) (int32, bool, error) {
	var parentID int32
	err := c.db.QueryRowContext(ctx, `
		SELECT parent_id FROM `+albumAlbumsTable+` WHERE child_id = $1 ORDER BY parent_id ASC LIMIT 1
	`, id).Scan(&parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, classify("album_parent", err)
	}
	return parentID, true, nil
}

// AlbumChildAlbums lists the immediate child albums of id.
func (c *Catalog) AlbumChildAlbums(ctx context.Context, id int32) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT a.id, a.name FROM `+albumsTable+` a
		JOIN `+albumAlbumsTable+` e ON e.child_id = a.id
		WHERE e.parent_id = $1
	`, id)
	if err != nil {
		return nil, classify("album_child_albums", err)
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, classify("album_child_albums", err)
		}
		out = append(out, a)
	}
	return out, classify("album_child_albums", rows.Err())
}

// RenameAlbum updates an album's name in place. A collision with a sibling
// of the same name surfaces as apierr.ErrConflict.
func (c *Catalog) RenameAlbum(ctx context.Context, id int32, newName string) error {
	res, err := c.sq.Update(albumsTable).Set("name", newName).Where(sq.Eq{"id": id}).
		RunWith(c.db).ExecContext(ctx)
	if err != nil {
		return classify("rename_album", err)
	}
	return checkOneRowAffected("rename_album", res)
}

// MoveAlbum repoints id's single parent edge to newParentID, or removes it
// entirely when newParentID is nil, promoting the album to a root.
func (c *Catalog) MoveAlbum(ctx context.Context, id int32, newParentID *int32) error {
	if _, err := c.sq.Delete(albumAlbumsTable).Where(sq.Eq{"child_id": id}).
		RunWith(c.db).ExecContext(ctx); err != nil {
		return classify("move_album", err)
	}
	if newParentID == nil {
		return nil
	}
	if _, err := c.sq.Insert(albumAlbumsTable).Columns("parent_id", "child_id").
		Values(*newParentID, id).RunWith(c.db).ExecContext(ctx); err != nil {
		return classify("move_album", err)
	}
	return nil
}

// DeleteAlbum removes the album row along with its parent/child album edges
// and photo edges. It does not recurse into descendants: callers resolve the
// subtree first (see internal/fsops), matching spec.md §4.C's "delete is
// shallow" invariant.
func (c *Catalog) DeleteAlbum(ctx context.Context, id int32) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("delete_album", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+albumAlbumsTable+` WHERE parent_id = $1 OR child_id = $1`, id); err != nil {
		return classify("delete_album", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+albumPhotosTable+` WHERE album_id = $1`, id); err != nil {
		return classify("delete_album", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM `+albumsTable+` WHERE id = $1`, id)
	if err != nil {
		return classify("delete_album", err)
	}
	if err := checkOneRowAffected("delete_album", res); err != nil {
		return err
	}
	return classify("delete_album", tx.Commit())
}
