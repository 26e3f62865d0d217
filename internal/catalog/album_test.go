package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The rest of this package's tests assert squirrel's SQL-builder output
// rather than adopt a sqlmock dependency (see catalog_test.go). Asserting
// CreateAlbum's duplicate-rejection behavior needs an actual
// database/sql round trip though, since the behavior hinges on what a
// real *sql.DB does with a zero-row RETURNING result. fakeAlbumDriver is
// a minimal database/sql/driver.Driver, backed by an in-memory slice,
// standing in for Postgres just far enough to exercise that path.
type fakeAlbumRow struct {
	id       int32
	name     string
	parentID *int32
}

type fakeAlbumStore struct {
	mu     sync.Mutex
	albums []fakeAlbumRow
	nextID int32
}

type fakeAlbumDriver struct {
	store *fakeAlbumStore
}

func (d *fakeAlbumDriver) Open(name string) (driver.Conn, error) {
	return &fakeAlbumConn{store: d.store}, nil
}

type fakeAlbumConn struct {
	store *fakeAlbumStore
}

func (c *fakeAlbumConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeAlbumStmt{store: c.store, query: query}, nil
}
func (c *fakeAlbumConn) Close() error              { return nil }
func (c *fakeAlbumConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions not supported by fakeAlbumDriver") }

type fakeAlbumStmt struct {
	store *fakeAlbumStore
	query string
}

func (s *fakeAlbumStmt) Close() error  { return nil }
func (s *fakeAlbumStmt) NumInput() int { return -1 }

// argParentID converts the driver-level representation of album.ParentID
// (nil or an int64, after database/sql's pointer-dereferencing default
// conversion) back into a *int32.
func argParentID(v driver.Value) *int32 {
	if v == nil {
		return nil
	}
	p := int32(v.(int64))
	return &p
}

func (s *fakeAlbumStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	name := args[0].(string)
	parentID := argParentID(args[1])

	var found *fakeAlbumRow
	for i := range s.store.albums {
		a := s.store.albums[i]
		if a.name != name {
			continue
		}
		if (a.parentID == nil) != (parentID == nil) {
			continue
		}
		if a.parentID != nil && parentID != nil && *a.parentID != *parentID {
			continue
		}
		found = &s.store.albums[i]
		break
	}

	switch {
	case containsInsert(s.query):
		if found != nil {
			return &fakeAlbumRows{}, nil // ON CONFLICT DO NOTHING: zero rows
		}
		s.store.nextID++
		row := fakeAlbumRow{id: s.store.nextID, name: name, parentID: parentID}
		s.store.albums = append(s.store.albums, row)
		return &fakeAlbumRows{values: [][]driver.Value{{int64(row.id)}}}, nil
	case containsLookup(s.query):
		if found == nil {
			return &fakeAlbumRows{}, nil
		}
		return &fakeAlbumRows{values: [][]driver.Value{{int64(found.id)}}}, nil
	default:
		return nil, fmt.Errorf("fakeAlbumDriver: unexpected query: %s", s.query)
	}
}

func (s *fakeAlbumStmt) Exec(args []driver.Value) (driver.Result, error) {
	return fakeResult{rows: 1}, nil
}

func containsInsert(query string) bool {
	return strings.Contains(query, "ON CONFLICT ON CONSTRAINT")
}

func containsLookup(query string) bool {
	return strings.Contains(query, "IS NOT DISTINCT FROM")
}

type fakeAlbumRows struct {
	values [][]driver.Value
	idx    int
}

func (r *fakeAlbumRows) Columns() []string { return []string{"id"} }
func (r *fakeAlbumRows) Close() error      { return nil }
func (r *fakeAlbumRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.idx])
	r.idx++
	return nil
}

var fakeDriverCounter int32

func registerFakeAlbumDriver() string {
	name := fmt.Sprintf("fakealbum%d", atomic.AddInt32(&fakeDriverCounter, 1))
	sql.Register(name, &fakeAlbumDriver{store: &fakeAlbumStore{}})
	return name
}

func TestCreateAlbumRejectsDuplicateSiblingName(t *testing.T) {
	driverName := registerFakeAlbumDriver()
	db, err := sql.Open(driverName, "")
	require.NoError(t, err)
	defer db.Close()

	cat := New(db)
	ctx := context.Background()

	rows1, id1, err := cat.CreateAlbum(ctx, NewAlbum{Name: "Trip"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows1)
	assert.NotZero(t, id1)

	rows2, id2, err := cat.CreateAlbum(ctx, NewAlbum{Name: "Trip"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows2)
	assert.Equal(t, id1, id2)
}

func TestCreateAlbumAllowsSameNameUnderDifferentParents(t *testing.T) {
	driverName := registerFakeAlbumDriver()
	db, err := sql.Open(driverName, "")
	require.NoError(t, err)
	defer db.Close()

	cat := New(db)
	ctx := context.Background()

	parentA := int32(10)
	parentB := int32(20)

	rowsA, idA, err := cat.CreateAlbum(ctx, NewAlbum{Name: "Favorites", ParentID: &parentA})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rowsA)

	rowsB, idB, err := cat.CreateAlbum(ctx, NewAlbum{Name: "Favorites", ParentID: &parentB})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rowsB)
	assert.NotEqual(t, idA, idB)
}
