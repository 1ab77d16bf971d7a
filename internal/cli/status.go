package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current checkpoint",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := setup()

	ctx := context.Background()
	d := newDeps(cfg)
	defer d.Close()

	checkpoints, err := d.checkpoints(ctx)
	if err != nil {
		slog.Error("Failed to open checkpoint store", "error", err)
		os.Exit(1)
	}

	ts, err := checkpoints.Load(ctx)
	if err != nil {
		slog.Error("Failed to load checkpoint", "error", err)
		os.Exit(1)
	}

	value := "(none)"
	if ts != nil {
		value = ts.Format(time.RFC3339Nano)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NAME\tBACKEND\tCHECKPOINT")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", checkpoints.Name(), cfg.Checkpoint.Backend, value)
	_ = w.Flush()
}
