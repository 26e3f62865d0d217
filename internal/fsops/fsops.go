// Package fsops performs the primitive on-disk operations that keep the
// real filesystem layout in sync with catalog mutations: creating, moving
// and deleting album directories, moving and deleting photo file groups,
// and pruning emptied thumbnail directories.
//
// Every path argument here is relative to StorageRoot or ThumbnailRoot;
// internal/pathresolver is responsible for turning catalog ids into those
// relative paths before calling in.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fubuki4649/suisai-server/internal/apierr"
	"github.com/fubuki4649/suisai-server/internal/logging"
)

// FsOps performs on-disk mutations under two roots: StorageRoot holds
// albums and photo files (plus the "unfiled" directory), ThumbnailRoot
// holds rendered thumbnail JPEGs.
type FsOps struct {
	StorageRoot   string
	ThumbnailRoot string
	UnfiledDir    string

	log *logrus.Entry
}

func New(storageRoot, thumbnailRoot, unfiledDir string) *FsOps {
	return &FsOps{
		StorageRoot:   storageRoot,
		ThumbnailRoot: thumbnailRoot,
		UnfiledDir:    unfiledDir,
		log:           logging.For("fsops"),
	}
}

// Prefix concatenates base with candidate, stripping any leading path
// separators from candidate first so an absolute-looking candidate never
// replaces base the way filepath.Join would.
func Prefix(base, candidate string) string {
	return filepath.Join(base, strings.TrimLeft(candidate, string(filepath.Separator)))
}

// CreateAlbumFs creates StorageRoot/name. It fails if the directory already
// exists.
func (f *FsOps) CreateAlbumFs(name string) error {
	full := Prefix(f.StorageRoot, name)
	if _, err := os.Stat(full); err == nil {
		return fmt.Errorf("create_album_fs: %s: %w", full, apierr.ErrConflict)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("create_album_fs: stat %s: %w", full, apierr.ErrIO)
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return fmt.Errorf("create_album_fs: mkdir %s: %w", full, apierr.ErrIO)
	}
	return nil
}

// MoveAlbumFs renames the album directory at src (relative to StorageRoot)
// to dst. src must exist and be a directory, dst's parent must exist, dst
// must be absent, and dst must not be a path-prefix descendant of src
// (which would make the rename a loop).
func (f *FsOps) MoveAlbumFs(src, dst string) error {
	fullSrc := Prefix(f.StorageRoot, src)
	fullDst := Prefix(f.StorageRoot, dst)

	info, err := os.Stat(fullSrc)
	if err != nil {
		return fmt.Errorf("move_album_fs: stat %s: %w", fullSrc, apierr.ErrNotFound)
	}
	if !info.IsDir() {
		return fmt.Errorf("move_album_fs: %s is not a directory: %w", fullSrc, apierr.ErrBadInput)
	}

	if _, err := os.Stat(filepath.Dir(fullDst)); err != nil {
		return fmt.Errorf("move_album_fs: dst parent missing %s: %w", filepath.Dir(fullDst), apierr.ErrNotFound)
	}
	if _, err := os.Stat(fullDst); err == nil {
		return fmt.Errorf("move_album_fs: dst already exists %s: %w", fullDst, apierr.ErrConflict)
	}

	if isPathPrefixDescendant(fullSrc, fullDst) {
		return fmt.Errorf("move_album_fs: %s is a descendant of %s: %w", fullDst, fullSrc, apierr.ErrBadInput)
	}

	if err := os.Rename(fullSrc, fullDst); err != nil {
		return fmt.Errorf("move_album_fs: rename %s -> %s: %w", fullSrc, fullDst, apierr.ErrIO)
	}
	return nil
}

// isPathPrefixDescendant reports whether dst lies inside src, which would
// turn a rename into a loop.
func isPathPrefixDescendant(src, dst string) bool {
	rel, err := filepath.Rel(src, dst)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}

// DeleteAlbumFs removes the album directory at albumPath. Every child
// photo's file group is moved to the unfiled directory first, every child
// subalbum is renamed up into the storage root, and only then is the
// now-empty directory removed. Children before parent; any step failing
// aborts with the filesystem left partially moved, which callers treat as
// I/O-fatal rather than attempting to unwind.
func (f *FsOps) DeleteAlbumFs(albumPath string, childPhotoPaths, childAlbumPaths []string) error {
	for _, photoPath := range childPhotoPaths {
		if err := f.MovePhotoFs(photoPath, f.UnfiledDir); err != nil {
			return fmt.Errorf("delete_album_fs: moving child photo %s: %w", photoPath, err)
		}
	}

	for _, childAlbum := range childAlbumPaths {
		name := filepath.Base(childAlbum)
		if err := f.MoveAlbumFs(childAlbum, name); err != nil {
			return fmt.Errorf("delete_album_fs: promoting child album %s: %w", childAlbum, err)
		}
	}

	full := Prefix(f.StorageRoot, albumPath)
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("delete_album_fs: removing %s: %w", full, apierr.ErrIO)
	}
	return nil
}

// MovePhotoFs moves the photo file group at srcPath into dstDir (both
// relative to StorageRoot).
func (f *FsOps) MovePhotoFs(srcPath, dstDir string) error {
	fullSrc := Prefix(f.StorageRoot, srcPath)
	fullDstDir := Prefix(f.StorageRoot, dstDir)

	group, err := f.fileGroup(fullSrc)
	if err != nil {
		return fmt.Errorf("move_photo_fs: %w", err)
	}

	for _, name := range group {
		from := filepath.Join(filepath.Dir(fullSrc), name)
		to := filepath.Join(fullDstDir, name)
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("move_photo_fs: rename %s -> %s: %w", from, to, apierr.ErrIO)
		}
	}
	return nil
}

// DeletePhotoFs removes the photo file group at photoPath and the
// thumbnail file at thumbPath, then prunes empty parent directories of
// thumbPath upward until ThumbnailRoot is reached or a non-empty directory
// is found.
func (f *FsOps) DeletePhotoFs(photoPath, thumbPath string) error {
	fullPhoto := Prefix(f.StorageRoot, photoPath)

	group, err := f.fileGroup(fullPhoto)
	if err != nil {
		return fmt.Errorf("delete_photo_fs: %w", err)
	}
	for _, name := range group {
		p := filepath.Join(filepath.Dir(fullPhoto), name)
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("delete_photo_fs: removing %s: %w", p, apierr.ErrIO)
		}
	}

	fullThumb := Prefix(f.ThumbnailRoot, thumbPath)
	if err := os.Remove(fullThumb); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete_photo_fs: removing thumbnail %s: %w", fullThumb, apierr.ErrIO)
	}

	f.pruneEmptyDirs(filepath.Dir(fullThumb))
	return nil
}

// pruneEmptyDirs removes dir and walks upward removing now-empty parents,
// stopping at ThumbnailRoot or the first non-empty directory. Failures are
// logged and swallowed: an un-pruned empty directory is cosmetic, not a
// correctness problem.
func (f *FsOps) pruneEmptyDirs(dir string) {
	root := filepath.Clean(f.ThumbnailRoot)
	for {
		dir = filepath.Clean(dir)
		if dir == root || len(dir) <= len(root) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.log.WithError(err).WithField("dir", dir).Debug("prune: read dir failed")
			return
		}
		if len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			f.log.WithError(err).WithField("dir", dir).Debug("prune: remove failed")
			return
		}
		dir = filepath.Dir(dir)
	}
}

// fileGroup returns the names of every regular file in fullPath's directory
// whose name shares fullPath's extension-stripped basename as a prefix:
// sidecars, exports and editor metadata the photo is published alongside.
// Subdirectories are skipped; the result always includes the photo file
// itself.
func (f *FsOps) fileGroup(fullPath string) ([]string, error) {
	dir := filepath.Dir(fullPath)
	base := filepath.Base(fullPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, apierr.ErrIO)
	}

	var group []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), stem) {
			group = append(group, entry.Name())
		}
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%s: %w", fullPath, apierr.ErrNotFound)
	}
	return group, nil
}
