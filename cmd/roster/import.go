package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reachlyapp/reachly-server/internal/config"
	"github.com/reachlyapp/reachly-server/internal/logger"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/roster"
	"github.com/reachlyapp/reachly-server/internal/search"
	"github.com/reachlyapp/reachly-server/internal/service"
	"github.com/reachlyapp/reachly-server/internal/store/sqlite"
)

func runImport(cmd *cobra.Command, args []string) error {
	var flags []string
	if dataPath != "" {
		flags = append(flags, "-data-path", dataPath)
	}
	if logLevel != "" {
		flags = append(flags, "-log-level", logLevel)
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	st, err := sqlite.Open(filepath.Join(cfg.Data.BasePath, "reachly.db"), log.Logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Data.BasePath, Logger: log.Logger})
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer index.Close()
	st.SetSearchIndexer(index)

	storage, err := images.NewStorageWithSubdir(cfg.Data.BasePath, "avatars")
	if err != nil {
		return fmt.Errorf("open avatar storage: %w", err)
	}
	fetcher := images.NewFetcher(nil, images.NewProcessor(storage, log.Logger), log.Logger)

	importer := service.NewRosterService(st, service.RosterOptions{
		Avatars:  fetcher,
		Search:   service.NewSearchService(index, st, log.Logger),
		Currency: cfg.Wallet.Currency,
		Workers:  cfg.Roster.ImportWorkers,
		Logger:   log.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return importFiles(ctx, cmd.OutOrStdout(), importer, args)
}

// importFiles imports each file in turn and prints its summary. It stops at
// the first file that cannot be read or whose import aborts.
func importFiles(ctx context.Context, out io.Writer, importer roster.Importer, paths []string) error {
	for _, path := range paths {
		entries, err := roster.DecodeFile(path)
		if err != nil {
			return err
		}

		res, err := importer.Import(ctx, filepath.Base(path), entries)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		fmt.Fprintf(out, "%s: %d created, %d updated, %d failed (%s)\n",
			path, res.Created, res.Updated, res.Failed, res.Duration.Round(time.Millisecond))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  entry %d (%s): %s\n", e.Index, e.Name, e.Message)
		}
	}
	return nil
}
