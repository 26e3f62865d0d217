package virtualfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fubuki4649/suisai-server/internal/catalog"
)

// UnfiledDirName is the pseudo-directory under the virtual root holding
// photos with no album edge.
const UnfiledDirName = "unfiled"

// Catalog is the subset of *catalog.Catalog that hydration reads. A narrow
// interface keeps this package testable without a database.
type Catalog interface {
	GetRootAlbums(ctx context.Context) ([]catalog.Album, error)
	AlbumChildAlbums(ctx context.Context, id int32) ([]catalog.Album, error)
	GetPhotosInAlbum(ctx context.Context, albumID int32) ([]catalog.Photo, error)
	GetPhotosUnfiled(ctx context.Context) ([]catalog.Photo, error)
}

// Hydrator populates directory inodes on demand, consulting the catalog for
// which albums and photos live under a directory and the real filesystem
// for the file-group members a photo's raw/jpeg/sidecar files expand to.
type Hydrator struct {
	tree        *Tree
	cat         Catalog
	storageRoot string

	// albumIno records which catalog album id a hydrated directory inode
	// corresponds to, since the tree itself only knows names.
	albumIno map[uint64]int32
}

func NewHydrator(tree *Tree, cat Catalog, storageRoot string) *Hydrator {
	return &Hydrator{
		tree:        tree,
		cat:         cat,
		storageRoot: storageRoot,
		albumIno:    make(map[uint64]int32),
	}
}

// Hydrate populates ino's children if they are stale or never populated.
// It is a no-op when the inode is already fresh.
func (h *Hydrator) Hydrate(ctx context.Context, ino uint64) error {
	if h.tree.Validate(ino) {
		return nil
	}

	n := h.tree.Get(ino)
	if n == nil || n.Kind != KindDirectory {
		return nil
	}

	switch {
	case ino == RootIno:
		return h.hydrateRoot(ctx)
	case n.Name == UnfiledDirName && n.ParentIno == RootIno:
		return h.hydrateUnfiled(ctx)
	default:
		if albumID, ok := h.albumIno[ino]; ok {
			return h.hydrateAlbum(ctx, ino, albumID)
		}
	}
	return nil
}

func (h *Hydrator) hydrateRoot(ctx context.Context) error {
	albums, err := h.cat.GetRootAlbums(ctx)
	if err != nil {
		return err
	}
	for _, a := range albums {
		child := h.tree.Add(RootIno, a.Name, KindDirectory, "")
		h.albumIno[child.Ino] = a.ID
	}
	h.tree.Add(RootIno, UnfiledDirName, KindDirectory, "")
	h.tree.MarkHydrated(RootIno)
	return nil
}

func (h *Hydrator) hydrateUnfiled(ctx context.Context) error {
	unfiledIno, _ := h.tree.GetChild(RootIno, UnfiledDirName)
	photos, err := h.cat.GetPhotosUnfiled(ctx)
	if err != nil {
		return err
	}
	dir := Prefix(h.storageRoot, UnfiledDirName)
	if err := h.addFileGroupMembers(unfiledIno, photos, dir); err != nil {
		return err
	}
	h.tree.MarkHydrated(unfiledIno)
	return nil
}

func (h *Hydrator) hydrateAlbum(ctx context.Context, ino uint64, albumID int32) error {
	children, err := h.cat.AlbumChildAlbums(ctx, albumID)
	if err != nil {
		return err
	}
	for _, a := range children {
		child := h.tree.Add(ino, a.Name, KindDirectory, "")
		h.albumIno[child.Ino] = a.ID
	}

	photos, err := h.cat.GetPhotosInAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	dir := h.albumDir(ino)
	if err := h.addFileGroupMembers(ino, photos, dir); err != nil {
		return err
	}

	h.tree.MarkHydrated(ino)
	return nil
}

// albumDir reconstructs the real directory backing an album inode by
// walking parent names up to the root, mirroring internal/pathresolver but
// against in-memory inode names rather than catalog queries, since the
// caller already has the inode chain in hand.
func (h *Hydrator) albumDir(ino uint64) string {
	var segments []string
	for cur := ino; cur != RootIno; {
		n := h.tree.Get(cur)
		if n == nil {
			break
		}
		segments = append([]string{n.Name}, segments...)
		cur = n.ParentIno
	}
	return filepath.Join(append([]string{h.storageRoot}, segments...)...)
}

// addFileGroupMembers scans dir once and adds every regular file that
// belongs to one of photos' file groups as a direct KindRegular child of
// parentIno, named by its real on-disk file name (e.g. "a.NEF" sits
// directly inside its album directory, not inside a synthesized
// per-photo subdirectory). A file belongs to a photo's group when its
// name shares the photo's extension-stripped stem as a prefix, mirroring
// internal/fsops's file-group heuristic. This is the one hydration path
// that reads the real filesystem instead of the catalog.
func (h *Hydrator) addFileGroupMembers(parentIno uint64, photos []catalog.Photo, dir string) error {
	if len(photos) == 0 {
		return nil
	}

	stems := make([]string, len(photos))
	for i, p := range photos {
		stems[i] = strings.TrimSuffix(p.FileName, filepath.Ext(p.FileName))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, stem := range stems {
			if strings.HasPrefix(entry.Name(), stem) {
				h.tree.Add(parentIno, entry.Name(), KindRegular, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	return nil
}

// Prefix mirrors internal/fsops.Prefix; this package keeps its own copy
// rather than importing internal/fsops.
func Prefix(base, candidate string) string {
	return filepath.Join(base, strings.TrimLeft(candidate, string(filepath.Separator)))
}
