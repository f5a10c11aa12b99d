package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/config"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/logger"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/storage"
)

var RootCmd = &cobra.Command{
	Use:               "beook2pdf",
	Short:             "Export Beook books into a single PDF",
	Long:              "Export Beook books into a single PDF with contents pages, bookmarks and quiz sections",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

type rootArgs struct {
	logLevel    string
	logFormat   string
	databaseURL string
}

var (
	rArgs rootArgs
	cfg   *config.Config
)

func init() {
	RootCmd.PersistentFlags().StringVar(&rArgs.logLevel, "log-level", "", "log level: debug, info, warn or error (env LOG_LEVEL)")
	RootCmd.PersistentFlags().StringVar(&rArgs.logFormat, "log-format", "", "log format: text or json (env LOG_FORMAT)")
	RootCmd.PersistentFlags().StringVar(&rArgs.databaseURL, "database-url", "", "postgres connection string (env DATABASE_URL)")
}

// setup loads the configuration once the environment files are read, lets
// flags override it and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	if rArgs.logLevel != "" {
		cfg.LogLevel = rArgs.logLevel
	}
	if rArgs.logFormat != "" {
		cfg.LogFormat = rArgs.logFormat
	}
	if rArgs.databaseURL != "" {
		cfg.DatabaseURL = rArgs.databaseURL
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	_, thisFile, _, _ := runtime.Caller(0)
	return logger.SetupSLog(lvl, cfg.LogFormat, path.Dir(path.Dir(thisFile)))
}

func openStore(ctx context.Context) (*storage.PGX, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database url is required, set DATABASE_URL or --database-url")
	}

	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database url: %v", err)
	}
	pgCfg.ConnConfig.Tracer = logger.NewPGXTracer()

	pg, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres pool: %v", err)
	}

	return storage.NewPGX(pg, slog.Default(), cfg.StorePageSize), pg.Close, nil
}
