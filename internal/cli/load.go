package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/watermark/internal/load"
)

var (
	loadPath  string
	loadTable string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a CSV file into a Postgres table",
	Run:   runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadPath, "file", "", "CSV file to load (overrides load.csv_path)")
	loadCmd.Flags().StringVar(&loadTable, "table", "", "target table (overrides load.table)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) {
	cfg := setup()
	if loadPath != "" {
		cfg.Load.CSVPath = loadPath
	}
	if loadTable != "" {
		cfg.Load.Table = loadTable
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := newDeps(cfg)
	defer d.Close()

	db, err := d.database(ctx)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	loader := load.NewLoader(load.Config{
		Table:            cfg.Load.Table,
		LowercaseColumns: !cfg.Load.PreserveCase,
	}, func(ctx context.Context) (load.Tx, error) {
		uow, err := db.NewUnitOfWork(ctx)
		if err != nil {
			return nil, err
		}
		return uow, nil
	})

	res, err := loader.LoadFile(ctx, cfg.Load.CSVPath)
	if err != nil {
		slog.Error("Load failed", "file", cfg.Load.CSVPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Load finished",
		"file", cfg.Load.CSVPath,
		"table", cfg.Load.Table,
		"read", res.Read,
		"inserted", res.Inserted,
		"failed", res.Failed,
	)
}
