package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOps(t *testing.T) *FsOps {
	t.Helper()
	root := t.TempDir()
	thumbs := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unfiled"), 0o755))
	return New(root, thumbs, "unfiled")
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "/base/child", Prefix("/base", "child"))
	assert.Equal(t, "/base/child", Prefix("/base", "/child"))
	assert.Equal(t, "/base/child", Prefix("/base", "//child"))
}

func TestCreateAlbumFs(t *testing.T) {
	f := newTestOps(t)

	require.NoError(t, f.CreateAlbumFs("Vacation"))
	info, err := os.Stat(filepath.Join(f.StorageRoot, "Vacation"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	err = f.CreateAlbumFs("Vacation")
	assert.Error(t, err)
}

func TestMoveAlbumFs(t *testing.T) {
	f := newTestOps(t)
	require.NoError(t, f.CreateAlbumFs("Old"))

	require.NoError(t, f.MoveAlbumFs("Old", "New"))
	_, err := os.Stat(filepath.Join(f.StorageRoot, "New"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.StorageRoot, "Old"))
	assert.True(t, os.IsNotExist(err))
}

func TestMoveAlbumFsRejectsDescendant(t *testing.T) {
	f := newTestOps(t)
	require.NoError(t, f.CreateAlbumFs("Parent"))

	err := f.MoveAlbumFs("Parent", "Parent/Child")
	assert.Error(t, err)
}

func TestMovePhotoFsMovesFileGroup(t *testing.T) {
	f := newTestOps(t)
	require.NoError(t, f.CreateAlbumFs("Album"))
	albumDir := filepath.Join(f.StorageRoot, "Album")

	require.NoError(t, os.WriteFile(filepath.Join(albumDir, "photo.jpg"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(albumDir, "photo.xmp"), []byte("sidecar"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(albumDir, "other.jpg"), []byte("unrelated"), 0o644))

	require.NoError(t, f.MovePhotoFs("Album/photo.jpg", "unfiled"))

	_, err := os.Stat(filepath.Join(f.StorageRoot, "unfiled", "photo.jpg"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.StorageRoot, "unfiled", "photo.xmp"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(albumDir, "other.jpg"))
	require.NoError(t, err, "unrelated file must stay behind")
}

func TestDeletePhotoFsPrunesEmptyThumbnailDirs(t *testing.T) {
	f := newTestOps(t)
	require.NoError(t, f.CreateAlbumFs("Album"))
	require.NoError(t, os.WriteFile(filepath.Join(f.StorageRoot, "Album", "photo.jpg"), []byte("img"), 0o644))

	thumbDir := filepath.Join(f.ThumbnailRoot, "202403")
	require.NoError(t, os.MkdirAll(thumbDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(thumbDir, "photo.jpeg"), []byte("thumb"), 0o644))

	require.NoError(t, f.DeletePhotoFs("Album/photo.jpg", "202403/photo.jpeg"))

	_, err := os.Stat(filepath.Join(f.StorageRoot, "Album", "photo.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(thumbDir)
	assert.True(t, os.IsNotExist(err), "emptied thumbnail directory should be pruned")
}
