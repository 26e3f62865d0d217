package virtualfs

import (
	"context"
	"os"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"

	"github.com/fubuki4649/suisai-server/internal/logging"
)

// attrTTL and entryTTL bound how long the kernel trusts attributes and
// directory-entry results before re-asking, matching spec.md §4.D's 1s TTL
// for getattr/lookup.
const (
	attrTTL  = 1 * time.Second
	entryTTL = 1 * time.Second
)

// FS implements fuse.RawFileSystem over a Tree of inodes backed by the
// catalog and the real on-disk photo library. It is read-only: every
// mutating operation in the embedded default implementation returns
// ENOSYS/EROFS untouched.
type FS struct {
	fuse.RawFileSystem

	tree     *Tree
	attrs    *AttributeCache
	hydrator *Hydrator
	log      *logrus.Entry
}

// New builds the raw filesystem. Callers still need to call fuse.NewServer
// with the mount options described in spec.md §4.D before Serve-ing it.
func New(tree *Tree, attrs *AttributeCache, hydrator *Hydrator) *FS {
	return &FS{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		tree:          tree,
		attrs:         attrs,
		hydrator:      hydrator,
		log:           logging.For("virtualfs"),
	}
}

func (fs *FS) String() string { return "suisai" }

func (fs *FS) fillAttr(out *fuse.Attr, n *Inode) error {
	attr, err := fs.attrs.Get(n)
	if err != nil {
		return err
	}
	out.Ino = n.Ino
	out.Size = attr.Size
	out.Blksize = attr.Blksize
	out.Nlink = attr.Nlink
	out.Owner = fuse.Owner{Uid: attr.Uid, Gid: attr.Gid}
	out.SetTimes(timePtr(attr.Atime), timePtr(attr.Mtime), timePtr(attr.Ctime))

	switch n.Kind {
	case KindDirectory:
		out.Mode = fuse.S_IFDIR | attr.Mode
	case KindSymlink:
		out.Mode = fuse.S_IFLNK | attr.Mode
	default:
		out.Mode = fuse.S_IFREG | attr.Mode
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

// Lookup resolves name under a hydrated parent directory.
func (fs *FS) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	ctx := context.Background()
	if err := fs.hydrator.Hydrate(ctx, header.NodeId); err != nil {
		fs.log.WithError(err).WithField("ino", header.NodeId).Debug("lookup: hydrate failed")
		return fuse.EIO
	}

	childIno, ok := fs.tree.GetChild(header.NodeId, name)
	if !ok {
		return fuse.ENOENT
	}
	n := fs.tree.Get(childIno)
	if n == nil {
		return fuse.ENOENT
	}

	if err := fs.fillAttr(&out.Attr, n); err != nil {
		return fuse.EIO
	}
	out.NodeId = n.Ino
	out.Generation = n.Generation
	out.SetEntryTimeout(entryTTL)
	out.SetAttrTimeout(attrTTL)
	return fuse.OK
}

func (fs *FS) Forget(nodeid, nlookup uint64) {}

// GetAttr returns cached or freshly-stat'ed attributes for ino.
func (fs *FS) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	n := fs.tree.Get(input.NodeId)
	if n == nil {
		return fuse.ENOENT
	}
	if err := fs.fillAttr(&out.Attr, n); err != nil {
		return fuse.EIO
	}
	out.SetTimeout(attrTTL)
	return fuse.OK
}

// Open permits opening regular files; directories are handled by OpenDir.
func (fs *FS) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	n := fs.tree.Get(input.NodeId)
	if n == nil {
		return fuse.ENOENT
	}
	if n.Kind != KindRegular {
		return fuse.Status(fuse.EISDIR)
	}
	return fuse.OK
}

// Read serves bytes from the backing path, read-only.
func (fs *FS) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	n := fs.tree.Get(input.NodeId)
	if n == nil {
		return nil, fuse.ENOENT
	}
	if n.Kind != KindRegular {
		return nil, fuse.Status(fuse.EISDIR)
	}

	f, err := os.Open(n.BackingPath)
	if err != nil {
		fs.log.WithError(err).WithField("path", n.BackingPath).Debug("read: open failed")
		return nil, fuse.EIO
	}
	defer f.Close()

	nRead, err := f.ReadAt(buf, int64(input.Offset))
	if err != nil && nRead == 0 {
		return nil, fuse.EIO
	}
	return fuse.ReadResultData(buf[:nRead]), fuse.OK
}

func (fs *FS) Release(cancel <-chan struct{}, input *fuse.ReleaseIn) {}

// Flush is always OK: there is never dirty data to write back in a
// read-only filesystem.
func (fs *FS) Flush(cancel <-chan struct{}, input *fuse.FlushIn) fuse.Status {
	return fuse.OK
}

// OpenDir permits opening directories; hydration happens in ReadDir.
func (fs *FS) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	n := fs.tree.Get(input.NodeId)
	if n == nil {
		return fuse.ENOENT
	}
	if n.Kind != KindDirectory {
		return fuse.Status(fuse.ENOTDIR)
	}
	return fuse.OK
}

// ReadDir lists ".", "..", then children in stable order, resuming from
// input.Offset.
func (fs *FS) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return fs.readdir(input, out)
}

// ReadDirPlus behaves identically to ReadDir here: the kernel gets the same
// entries either way since every lookup is cheap (in-memory) once hydrated.
func (fs *FS) ReadDirPlus(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return fs.readdir(input, out)
}

func (fs *FS) readdir(input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	ctx := context.Background()
	n := fs.tree.Get(input.NodeId)
	if n == nil {
		return fuse.ENOENT
	}
	if n.Kind != KindDirectory {
		return fuse.Status(fuse.ENOTDIR)
	}
	if err := fs.hydrator.Hydrate(ctx, input.NodeId); err != nil {
		fs.log.WithError(err).WithField("ino", input.NodeId).Debug("readdir: hydrate failed")
		return fuse.EIO
	}

	offset := int64(input.Offset)
	if offset <= 0 {
		out.AddDirEntry(fuse.DirEntry{Mode: fuse.S_IFDIR, Name: ".", Ino: n.Ino})
	}
	if offset <= 1 {
		out.AddDirEntry(fuse.DirEntry{Mode: fuse.S_IFDIR, Name: "..", Ino: n.ParentIno})
	}

	children := fs.tree.SortedChildren(input.NodeId)
	for i, entry := range children {
		idx := int64(i) + 2
		if idx < offset {
			continue
		}
		child := fs.tree.Get(entry.Ino)
		if child == nil {
			continue
		}
		mode := uint32(fuse.S_IFREG)
		if child.Kind == KindDirectory {
			mode = fuse.S_IFDIR
		}
		if !out.AddDirEntry(fuse.DirEntry{Mode: mode, Name: entry.Name, Ino: child.Ino}) {
			break
		}
	}
	return fuse.OK
}

func (fs *FS) ReleaseDir(input *fuse.ReleaseIn) {}

// Access grants access whenever the inode exists; permission enforcement
// is delegated to the standard unix checks the kernel already applies to
// the backing files.
func (fs *FS) Access(cancel <-chan struct{}, input *fuse.AccessIn) fuse.Status {
	if fs.tree.Get(input.NodeId) == nil {
		return fuse.ENOENT
	}
	return fuse.OK
}

// GetXAttr: extended attributes are not modeled; the kernel is told there
// is no data rather than that the call is unsupported.
func (fs *FS) GetXAttr(cancel <-chan struct{}, header *fuse.InHeader, attr string, dest []byte) (uint32, fuse.Status) {
	return 0, fuse.Status(fuse.ENODATA)
}

// ListXAttr always reports an empty attribute list.
func (fs *FS) ListXAttr(cancel <-chan struct{}, header *fuse.InHeader, dest []byte) (uint32, fuse.Status) {
	return 0, fuse.OK
}
