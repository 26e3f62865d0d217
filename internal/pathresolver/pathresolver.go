// Package pathresolver turns catalog ids into the slash-separated paths the
// virtual filesystem presents to the kernel, by walking parent edges from a
// leaf up to a root and reversing the collected segments.
//
// The album graph is nominally a tree, but nothing in internal/catalog
// enforces single-parent at the storage layer beyond MoveAlbum's
// delete-then-insert pattern, so AlbumPath tiebreaks on the lowest parent id
// when more than one parent edge exists, and treats a revisited id as
// catalog corruption rather than recursing forever.
package pathresolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

// Albums is the subset of *catalog.Catalog that path resolution needs. A
// narrow interface keeps this package testable without a database.
type Albums interface {
	AlbumName(ctx context.Context, id int32) (string, error)
	// AlbumParent returns the parent album id, or ok=false for a root album.
	AlbumParent(ctx context.Context, id int32) (id2 int32, ok bool, err error)
}

// Photos is the subset of *catalog.Catalog that path resolution needs for
// photos.
type Photos interface {
	PhotoFileName(ctx context.Context, id int64) (string, error)
	// GetAlbumByPhoto returns the filing album id, or ok=false when unfiled.
	GetAlbumByPhoto(ctx context.Context, id int64) (albumID int32, ok bool, err error)
}

// Resolver computes catalog-to-path mappings for the virtual filesystem.
type Resolver struct {
	albums Albums
	photos Photos
}

func New(albums Albums, photos Photos) *Resolver {
	return &Resolver{albums: albums, photos: photos}
}

// AlbumPath returns the slash-separated path from the root down to albumID,
// not including any storage-root prefix. A root album's path is just its
// own name.
func (r *Resolver) AlbumPath(ctx context.Context, albumID int32) (string, error) {
	segments, err := r.collectAlbumSegments(ctx, albumID)
	if err != nil {
		return "", err
	}
	reverse(segments)
	return strings.Join(segments, "/"), nil
}

// PhotoPath returns the slash-separated path to photoID: either
// "<album path>/<file name>" when filed, or just "<file name>" when
// unfiled (the virtual filesystem places those directly under the unfiled
// directory instead).
func (r *Resolver) PhotoPath(ctx context.Context, photoID int64) (string, error) {
	fileName, err := r.photos.PhotoFileName(ctx, photoID)
	if err != nil {
		return "", fmt.Errorf("photo_path: %w", err)
	}

	albumID, filed, err := r.photos.GetAlbumByPhoto(ctx, photoID)
	if err != nil {
		return "", fmt.Errorf("photo_path: %w", err)
	}
	if !filed {
		return fileName, nil
	}

	albumPath, err := r.AlbumPath(ctx, albumID)
	if err != nil {
		return "", err
	}
	return albumPath + "/" + fileName, nil
}

// collectAlbumSegments walks from albumID up to its root, returning names
// in leaf-to-root order (the caller reverses them). A cycle manifests as a
// revisited id and is reported as apierr.ErrCorruption instead of recursing
// without bound.
func (r *Resolver) collectAlbumSegments(ctx context.Context, albumID int32) ([]string, error) {
	visited := make(map[int32]bool)
	var segments []string

	current := albumID
	for {
		if visited[current] {
			return nil, fmt.Errorf("album_path: cycle at album %d: %w", current, apierr.ErrCorruption)
		}
		visited[current] = true

		name, err := r.albums.AlbumName(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("album_path: %w", err)
		}
		segments = append(segments, name)

		parentID, ok, err := r.albums.AlbumParent(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("album_path: %w", err)
		}
		if !ok {
			return segments, nil
		}
		current = parentID
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
