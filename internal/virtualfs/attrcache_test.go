package virtualfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeCacheSynthesisesDirAttrs(t *testing.T) {
	ac, err := NewAttributeCache()
	require.NoError(t, err)

	n := &Inode{Ino: 1, Kind: KindDirectory}
	attr, err := ac.Get(n)
	require.NoError(t, err)

	assert.EqualValues(t, dirBlksize, attr.Blksize)
	assert.EqualValues(t, dirPerm, attr.Mode)
	assert.EqualValues(t, dirNlink, attr.Nlink)
}

func TestAttributeCacheStatsBackedInode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ac, err := NewAttributeCache()
	require.NoError(t, err)

	n := &Inode{Ino: 2, Kind: KindRegular, BackingPath: path}
	attr, err := ac.Get(n)
	require.NoError(t, err)
	assert.EqualValues(t, 5, attr.Size)
}

func TestAttributeCacheMissingBackingFileErrors(t *testing.T) {
	ac, err := NewAttributeCache()
	require.NoError(t, err)

	n := &Inode{Ino: 3, Kind: KindRegular, BackingPath: "/nonexistent/path"}
	_, err = ac.Get(n)
	assert.Error(t, err)
}
