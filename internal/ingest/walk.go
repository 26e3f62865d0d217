package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// findImages recursively walks src, returning every regular file whose
// sniffed MIME type is an image, in deterministic (lexical) order.
func findImages(src string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		mime, err := mimetype.DetectFile(path)
		if err != nil {
			return nil
		}
		if strings.HasPrefix(mime.String(), "image/") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
