package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/app"
	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/database"
	"github.com/akyairhashvil/roadmap/internal/persistence"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/util"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Plan quarterly roadmaps across teams and scenarios",
		Long: `roadmap keeps timelines, teams and their tasks in a local SQLite file and
lays tasks out as non-overlapping bars along a quarterly axis.

Run without a subcommand to open the board.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts, "")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides config)")

	cmd.AddCommand(boardCmd(opts))
	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(exportCmd(opts))
	cmd.AddCommand(importCmd(opts))
	cmd.AddCommand(reportCmd(opts))
	cmd.AddCommand(layoutCmd(opts))
	cmd.AddCommand(historyCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

// runtime is an opened roadmap: database, persistence and a loaded store.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.Database
	app    *app.App
}

func openRuntime(ctx context.Context, cfg *config.Config, logWriter io.Writer) (*runtime, error) {
	logger := util.NewLogger(logWriter, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	svc := persistence.New(db,
		persistence.WithKey(cfg.DocumentKey),
		persistence.WithTimeout(cfg.PersistTimeout),
		persistence.WithPassphrase(cfg.Passphrase),
		persistence.WithLogger(logger),
	)
	st := store.New(store.WithHistoryDepth(cfg.HistoryDepth))
	return &runtime{
		cfg:    cfg,
		logger: logger,
		db:     db,
		app:    app.New(ctx, st, svc, logger),
	}, nil
}

func (r *runtime) store() *store.Store { return r.app.Store() }

func (r *runtime) Close() {
	r.app.Close()
	if err := r.db.Close(); err != nil {
		util.LogError(r.logger, "close database", err)
	}
}

// logFile opens the log file used while the terminal belongs to the board.
func logFile() (*os.File, error) {
	dir := util.DataDir(config.AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, config.AppName+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}
