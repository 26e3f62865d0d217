package catalog

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPhotoToAlbumBuildsMultiRowInsert(t *testing.T) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(albumPhotosTable).Columns("album_id", "photo_id").
		Values(int32(1), int64(10)).
		Values(int32(1), int64(11))

	query, args, err := builder.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$4")
	assert.Len(t, args, 4)
}

func TestRemovePhotoFromAlbumBuildsInClause(t *testing.T) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Delete(albumPhotosTable).Where(sq.Eq{"photo_id": []int64{10, 11, 12}})

	query, args, err := builder.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "IN")
	assert.Len(t, args, 3)
}

func TestRemoveAlbumFromAlbumBuildsInClause(t *testing.T) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Delete(albumAlbumsTable).Where(sq.Eq{"child_id": []int32{1, 2}})

	query, _, err := builder.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, albumAlbumsTable)
	assert.Contains(t, query, "child_id")
}
