// Package config loads the process's environment variables and runs the
// preflight directory checks spec.md §4.C and §6 require before any other
// component touches the filesystem or database.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fubuki4649/suisai-server/internal/apierr"
)

// Config is every environment-derived setting the process needs.
type Config struct {
	DatabaseURL            string
	StorageRoot            string
	ThumbnailRoot          string
	FileAttributeCacheSize int
}

const unfiledDirName = "unfiled"

// Load reads the required environment variables, returning apierr.ErrBadInput
// wrapped with the name of whichever variable is missing.
func Load() (Config, error) {
	c := Config{
		FileAttributeCacheSize: 1 << 20,
	}

	var ok bool
	if c.DatabaseURL, ok = os.LookupEnv("DATABASE_URL"); !ok {
		return Config{}, fmt.Errorf("DATABASE_URL: %w", apierr.ErrBadInput)
	}
	if c.StorageRoot, ok = os.LookupEnv("STORAGE_ROOT"); !ok {
		return Config{}, fmt.Errorf("STORAGE_ROOT: %w", apierr.ErrBadInput)
	}
	if c.ThumbnailRoot, ok = os.LookupEnv("THUMBNAIL_ROOT"); !ok {
		return Config{}, fmt.Errorf("THUMBNAIL_ROOT: %w", apierr.ErrBadInput)
	}

	if v, ok := os.LookupEnv("FILE_ATTRIBUTE_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("FILE_ATTRIBUTE_CACHE_SIZE must be a positive integer: %w", apierr.ErrBadInput)
		}
		c.FileAttributeCacheSize = n
	}

	return c, nil
}

// Preflight ensures STORAGE_ROOT/unfiled and THUMBNAIL_ROOT exist as
// directories, creating them if missing. A path that exists but is not a
// directory is fatal.
func (c Config) Preflight() error {
	if err := ensureDir(fmt.Sprintf("%s/%s", c.StorageRoot, unfiledDirName)); err != nil {
		return err
	}
	return ensureDir(c.ThumbnailRoot)
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, apierr.ErrIO)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, apierr.ErrIO)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory: %w", path, apierr.ErrBadInput)
	}
	return nil
}
