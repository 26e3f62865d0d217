package pathresolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

type fakeAlbums struct {
	names   map[int32]string
	parents map[int32]int32 // absence means root
}

func (f *fakeAlbums) AlbumName(ctx context.Context, id int32) (string, error) {
	return f.names[id], nil
}

func (f *fakeAlbums) AlbumParent(ctx context.Context, id int32) (int32, bool, error) {
	p, ok := f.parents[id]
	return p, ok, nil
}

type fakePhotos struct {
	fileNames map[int64]string
	parents   map[int64]int32 // absence means unfiled
}

func (f *fakePhotos) PhotoFileName(ctx context.Context, id int64) (string, error) {
	return f.fileNames[id], nil
}

func (f *fakePhotos) GetAlbumByPhoto(ctx context.Context, id int64) (int32, bool, error) {
	p, ok := f.parents[id]
	return p, ok, nil
}

func TestAlbumPathRoot(t *testing.T) {
	albums := &fakeAlbums{names: map[int32]string{1: "Root"}, parents: map[int32]int32{}}
	r := New(albums, &fakePhotos{})

	path, err := r.AlbumPath(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Root", path)
}

func TestAlbumPathNested(t *testing.T) {
	albums := &fakeAlbums{
		names:   map[int32]string{1: "Root", 2: "Child", 3: "Grandchild"},
		parents: map[int32]int32{3: 2, 2: 1},
	}
	r := New(albums, &fakePhotos{})

	path, err := r.AlbumPath(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Root/Child/Grandchild", path)
}

func TestAlbumPathCycleDetected(t *testing.T) {
	albums := &fakeAlbums{
		names:   map[int32]string{1: "A", 2: "B"},
		parents: map[int32]int32{1: 2, 2: 1},
	}
	r := New(albums, &fakePhotos{})

	_, err := r.AlbumPath(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrCorruption)
}

func TestPhotoPathFiled(t *testing.T) {
	albums := &fakeAlbums{names: map[int32]string{1: "Album"}, parents: map[int32]int32{}}
	photos := &fakePhotos{
		fileNames: map[int64]string{10: "a.jpg"},
		parents:   map[int64]int32{10: 1},
	}
	r := New(albums, photos)

	path, err := r.PhotoPath(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Album/a.jpg", path)
}

func TestPhotoPathUnfiled(t *testing.T) {
	photos := &fakePhotos{fileNames: map[int64]string{10: "a.jpg"}, parents: map[int64]int32{}}
	r := New(&fakeAlbums{}, photos)

	path, err := r.PhotoPath(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", path)
}
