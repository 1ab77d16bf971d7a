package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/watermark/internal/infra/storage"
)

var resetClear bool

var resetCheckpointCmd = &cobra.Command{
	Use:   "reset-checkpoint [timestamp]",
	Short: "Overwrite the checkpoint with a given timestamp, or clear it",
	Long: `Overwrite the checkpoint, even with an older value, so the next cycle
re-extracts everything after it. With --clear the checkpoint is removed and
the next cycle extracts every record.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResetCheckpoint,
}

func init() {
	resetCheckpointCmd.Flags().BoolVar(&resetClear, "clear", false, "remove the checkpoint entirely")
	rootCmd.AddCommand(resetCheckpointCmd)
}

func runResetCheckpoint(cmd *cobra.Command, args []string) {
	if resetClear == (len(args) == 1) {
		fmt.Println("Provide either a timestamp or --clear")
		os.Exit(1)
	}

	var ts time.Time
	if !resetClear {
		parsed, err := storage.ParseCheckpoint(args[0])
		if err != nil || parsed == nil {
			fmt.Printf("Invalid timestamp: %q\n", args[0])
			os.Exit(1)
		}
		ts = *parsed
	}

	cfg := setup()

	ctx := context.Background()
	d := newDeps(cfg)
	defer d.Close()

	checkpoints, err := d.checkpoints(ctx)
	if err != nil {
		slog.Error("Failed to open checkpoint store", "error", err)
		os.Exit(1)
	}

	if resetClear {
		if err := checkpoints.Clear(ctx); err != nil {
			slog.Error("Failed to clear checkpoint", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared checkpoint %s\n", checkpoints.Name())
		return
	}

	if err := checkpoints.Reset(ctx, ts); err != nil {
		slog.Error("Failed to reset checkpoint", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully reset checkpoint %s to %s\n", checkpoints.Name(), ts.Format(time.RFC3339Nano))
}
