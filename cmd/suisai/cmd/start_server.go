package cmd

import (
	"database/sql"
	"fmt"
	"runtime"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fubuki4649/suisai-server/internal/catalog"
	"github.com/fubuki4649/suisai-server/internal/config"
	"github.com/fubuki4649/suisai-server/internal/logging"
	"github.com/fubuki4649/suisai-server/internal/virtualfs"
)

var startServerCmd = &cobra.Command{
	Use:   "start-server [mount-path]",
	Short: "mount the read-only virtual filesystem unless --disable-fuse is given (no HTTP API is served)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStartServer,
}

var disableFuse bool

func init() {
	startServerCmd.Flags().BoolVar(&disableFuse, "disable-fuse", false, "don't mount the virtual filesystem")
	Root.AddCommand(startServerCmd)
}

func runStartServer(c *cobra.Command, args []string) error {
	log := logging.For("cmd.start-server")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Preflight(); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cat := catalog.New(db)

	if !disableFuse {
		if len(args) != 1 {
			return fmt.Errorf("start-server: a mount path is required unless --disable-fuse is given")
		}
		mountDone := make(chan error, 1)
		go func() {
			mountDone <- serveFuse(args[0], cfg.StorageRoot, cat, log)
		}()
		return <-mountDone
	}

	log.Info("FUSE mount disabled; nothing to serve without it in this build")
	return nil
}

// serveFuse mounts the virtual filesystem on the calling goroutine's OS
// thread, matching spec.md §5's "dedicated OS thread runs the FUSE
// dispatch loop" concurrency model.
func serveFuse(mountPath, storageRoot string, cat *catalog.Catalog, log *logrus.Entry) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	server, err := virtualfs.Mount(mountPath, storageRoot, cat)
	if err != nil {
		return fmt.Errorf("mounting %s: %w", mountPath, err)
	}
	log.WithField("mountpoint", mountPath).Info("virtual filesystem mounted")
	server.Serve()
	return nil
}
