package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/watermark/internal/extract"
	"github.com/vietddude/watermark/internal/health"
)

var (
	extractInterval time.Duration
	extractMode     string
	extractDryRun   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract records newer than the checkpoint",
	Long: `Run one extraction cycle, or keep cycling every --interval until
interrupted. In continue mode a failed cycle is logged and the loop goes on;
in propagate mode the first failure stops the command.`,
	Run: runExtract,
}

func init() {
	extractCmd.Flags().DurationVar(&extractInterval, "interval", 0, "repeat every interval (0 runs a single cycle)")
	extractCmd.Flags().StringVar(&extractMode, "mode", "", "failure handling: continue or propagate (overrides config)")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "advance the checkpoint in memory only")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg := setup()

	if cmd.Flags().Changed("interval") {
		cfg.Extract.Interval = extractInterval
	}
	if extractMode != "" {
		cfg.Extract.Mode = extractMode
	}
	mode, err := extract.ParseMode(cfg.Extract.Mode)
	if err != nil {
		slog.Error("Invalid mode", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := newDeps(cfg)
	defer d.Close()

	openCheckpoints := d.checkpoints
	if extractDryRun {
		openCheckpoints = d.dryRunCheckpoints
	}
	checkpoints, err := openCheckpoints(ctx)
	if err != nil {
		slog.Error("Failed to open checkpoint store", "error", err)
		os.Exit(1)
	}
	source, err := d.source(ctx)
	if err != nil {
		slog.Error("Failed to open source", "error", err)
		os.Exit(1)
	}

	runner := extract.NewRunner(extract.Config{
		Source:      source,
		Checkpoints: checkpoints,
		Mode:        mode,
	})

	if cfg.Extract.Interval <= 0 {
		res, err := runner.RunOnce(ctx)
		if err != nil || res.Err != nil {
			// Continue mode already logged it
			if err != nil {
				slog.Error("Extraction failed", "run_id", res.RunID, "error", err)
			}
			os.Exit(1)
		}
		return
	}

	var srv *health.Server
	if cfg.Server.Port > 0 {
		monitor := health.NewMonitor(checkpoints.Name(), runner, cfg.Extract.StaleAfter)
		srv = health.NewServer(monitor, cfg.Server.Port)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Health server failed", "error", err)
			}
		}()
		slog.Info("Health server started", "port", cfg.Server.Port)
	}

	slog.Info("Extractor started",
		"checkpoint", checkpoints.Name(),
		"interval", cfg.Extract.Interval,
		"mode", mode,
	)
	runErr := runner.Run(ctx, cfg.Extract.Interval)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}

	if runErr != nil {
		slog.Error("Extractor stopped", "error", runErr)
		os.Exit(1)
	}
	slog.Info("Extractor stopped")
}
