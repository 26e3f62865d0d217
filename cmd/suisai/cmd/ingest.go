package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/fubuki4649/suisai-server/internal/catalog"
	"github.com/fubuki4649/suisai-server/internal/config"
	"github.com/fubuki4649/suisai-server/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <source>",
	Short: "walk <source> for new images and add them to the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var (
	ingestDry        bool
	ingestNoPreserve bool
)

func init() {
	ingestCmd.Flags().BoolVar(&ingestDry, "dry", false, "print would-be catalog rows without touching disk or database")
	ingestCmd.Flags().BoolVar(&ingestNoPreserve, "no-preserve", false, "move source files instead of copying them")
	Root.AddCommand(ingestCmd)
}

func runIngest(c *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Preflight(); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	opts := ingest.Options{
		StorageRoot:   cfg.StorageRoot,
		ThumbnailRoot: cfg.ThumbnailRoot,
		Dry:           ingestDry,
		NoPreserve:    ingestNoPreserve,
	}

	if opts.Dry {
		return ingest.Run(context.Background(), nil, args[0], opts)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cat := catalog.New(db)
	return ingest.Run(context.Background(), cat, args[0], opts)
}
