package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fubuki4649/suisai-server/internal/catalog"
	"github.com/fubuki4649/suisai-server/internal/logging"
)

// Catalog is the subset of *catalog.Catalog the ingest pipeline writes to.
type Catalog interface {
	CheckHash(ctx context.Context, hash string) (catalog.Photo, bool, error)
	CreatePhoto(ctx context.Context, new catalog.NewPhoto) (int64, error)
	CreateThumbnail(ctx context.Context, photoID int64, path string) error
}

// Options configures one ingest run, mirroring `suisai ingest`'s flags.
type Options struct {
	StorageRoot   string
	ThumbnailRoot string
	Dry           bool
	NoPreserve    bool
}

// unfiledDirName is the directory under StorageRoot new photos land in;
// filing into an album is a separate, later operation.
const unfiledDirName = "unfiled"

// Run walks source for image files, deduplicates against the catalog by
// content hash, and for each new file places the raw under
// StorageRoot/unfiled, renders a thumbnail, and inserts the photo and
// thumbnail rows. A single file's failure is logged and the walk
// continues; nothing is rolled back (spec.md §7).
func Run(ctx context.Context, cat Catalog, source string, opts Options) error {
	log := logging.For("ingest")

	paths, err := findImages(source)
	if err != nil {
		return fmt.Errorf("walking %s: %w", source, err)
	}
	log.WithField("count", len(paths)).Info("found candidate image files")

	if opts.Dry {
		return runDry(paths)
	}

	for _, path := range paths {
		if err := ingestOne(ctx, cat, path, opts, log); err != nil {
			log.WithError(err).WithField("path", path).Warn("ingest: skipping file")
		}
	}
	return nil
}

// runDry prints each candidate's would-be catalog row as JSON without
// touching disk or database.
func runDry(paths []string) error {
	for _, path := range paths {
		hash, err := hashFile(path)
		if err != nil {
			continue
		}
		new, err := buildNewPhoto(path, hash)
		if err != nil {
			continue
		}
		out, err := json.MarshalIndent(new, "", "  ")
		if err != nil {
			continue
		}
		fmt.Println(string(out))
	}
	return nil
}

func ingestOne(ctx context.Context, cat Catalog, path string, opts Options, log *logrus.Entry) error {
	hash, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	if _, found, err := cat.CheckHash(ctx, hash); err != nil {
		return fmt.Errorf("checking hash: %w", err)
	} else if found {
		log.WithField("hash", hash).Info("already ingested, skipping")
		return nil
	}

	destDir := filepath.Join(opts.StorageRoot, unfiledDirName)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}
	destPath := filepath.Join(destDir, filepath.Base(path))

	if opts.NoPreserve {
		if err := os.Rename(path, destPath); err != nil {
			return fmt.Errorf("moving %s -> %s: %w", path, destPath, err)
		}
	} else {
		if err := copyFile(path, destPath); err != nil {
			return fmt.Errorf("copying %s -> %s: %w", path, destPath, err)
		}
	}

	new, err := buildNewPhoto(destPath, hash)
	if err != nil {
		return fmt.Errorf("reading metadata for %s: %w", destPath, err)
	}

	thumbDir := filepath.Join(opts.ThumbnailRoot, fmt.Sprintf("%04d%02d", new.CaptureDate.Year(), new.CaptureDate.Month()))
	thumbName := trimExt(filepath.Base(destPath)) + ".jpeg"
	thumbPath, thumbErr := renderThumbnail(destPath, thumbDir, thumbName)
	if thumbErr != nil {
		log.WithError(thumbErr).WithField("path", destPath).Warn("thumbnail generation failed, continuing without one")
	}

	photoID, err := cat.CreatePhoto(ctx, new)
	if err != nil {
		return fmt.Errorf("inserting photo row: %w", err)
	}

	if thumbErr == nil {
		rel, err := filepath.Rel(opts.ThumbnailRoot, thumbPath)
		if err != nil {
			rel = thumbPath
		}
		if err := cat.CreateThumbnail(ctx, photoID, rel); err != nil {
			log.WithError(err).WithField("photo_id", photoID).Warn("inserting thumbnail row failed")
		}
	}

	log.WithField("photo_id", photoID).WithField("hash", hash).Info("ingested")
	return nil
}

func buildNewPhoto(path, hash string) (catalog.NewPhoto, error) {
	info, err := os.Stat(path)
	if err != nil {
		return catalog.NewPhoto{}, err
	}
	m := extractMetadata(path)

	return catalog.NewPhoto{
		Hash:            hash,
		FileName:        filepath.Base(path),
		SizeOnDiskKiB:   (info.Size() + 1023) / 1024,
		CaptureDate:     m.CaptureDate,
		CaptureTimezone: m.CaptureTimezone,
		Width:           m.Width,
		Height:          m.Height,
		MimeType:        m.MimeType,
		CameraModel:     m.CameraModel,
		LensModel:       m.LensModel,
		ShutterCount:    m.ShutterCount,
		FocalLengthMM:   m.FocalLengthMM,
		ISO:             m.ISO,
		ShutterSpeed:    m.ShutterSpeed,
		ApertureFNumber: m.ApertureFNumber,
	}, nil
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
