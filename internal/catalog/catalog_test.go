package catalog

import (
	"database/sql"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify("op", nil))
}

func TestClassifyNotFound(t *testing.T) {
	err := classify("get_photo", sql.ErrNoRows)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestClassifyUniqueViolation(t *testing.T) {
	err := classify("create_album", &pq.Error{Code: "23505"})
	assert.ErrorIs(t, err, apierr.ErrConflict)
}

func TestClassifyOtherIsInternal(t *testing.T) {
	err := classify("create_photo", errors.New("connection reset"))
	assert.ErrorIs(t, err, apierr.ErrInternal)
}

// fakeResult implements sql.Result for checkOneRowAffected tests.
type fakeResult struct {
	rows int64
	err  error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, f.err }

func TestCheckOneRowAffected(t *testing.T) {
	assert.NoError(t, checkOneRowAffected("rename_album", fakeResult{rows: 1}))

	err := checkOneRowAffected("rename_album", fakeResult{rows: 0})
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	err = checkOneRowAffected("rename_album", fakeResult{rows: 2})
	assert.ErrorIs(t, err, apierr.ErrCorruption)
}

func TestSquirrelUsesDollarPlaceholders(t *testing.T) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := builder.Select("id", "name").From(albumsTable).
		Where(sq.Eq{"id": []int32{1, 2, 3}}).ToSql()

	assert.NoError(t, err)
	assert.Contains(t, query, "$1")
	assert.Len(t, args, 3)
}
