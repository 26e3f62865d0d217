package virtualfs

import (
	"fmt"
	"os"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

// Mount builds the inode tree, attribute cache and hydrator, then mounts
// the read-only filesystem at mountpoint. The returned *fuse.Server has not
// started serving yet; call Serve on it, which blocks until unmount.
func Mount(mountpoint, storageRoot string, cat Catalog) (*fuse.Server, error) {
	info, err := os.Stat(mountpoint)
	if err != nil {
		return nil, fmt.Errorf("mount: mountpoint %s: %w", mountpoint, apierr.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mount: mountpoint %s is not a directory: %w", mountpoint, apierr.ErrBadInput)
	}

	attrs, err := NewAttributeCache()
	if err != nil {
		return nil, fmt.Errorf("mount: building attribute cache: %w", apierr.ErrInternal)
	}
	tree := NewTree()
	hydrator := NewHydrator(tree, cat, storageRoot)
	rawFS := New(tree, attrs, hydrator)

	server, err := fuse.NewServer(rawFS, mountpoint, &fuse.MountOptions{
		AllowOther:     true,
		FsName:         "suisai",
		Name:           "suisai",
		SingleThreaded: true,
		Options:        []string{"ro", "auto_unmount"},
	})
	if err != nil {
		return nil, fmt.Errorf("mount: %s: %w", mountpoint, apierr.ErrIO)
	}
	return server, nil
}
