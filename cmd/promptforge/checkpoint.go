package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/checkpoint"
)

func newCheckpointCmd() *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect run checkpoints",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Show the checkpoint stored in an output or scenario directory",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectCheckpoint,
	}

	checkpointCmd.AddCommand(inspectCmd)
	return checkpointCmd
}

func statusStr(complete bool) string {
	if complete {
		return "Complete"
	}
	return "Pending"
}

// inspectCheckpoint displays detailed information about a checkpoint
func inspectCheckpoint(cmd *cobra.Command, args []string) error {
	dir := args[0]

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	cp, err := checkpoint.Load(dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checkpoint Information for: %s\n", dir)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "Run ID:              %s\n", cp.RunID)
	fmt.Fprintf(out, "Command:             %s\n", cp.Command)
	fmt.Fprintf(out, "Created At:          %s\n", cp.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Last Saved At:       %s\n", cp.LastSavedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Config Hash:         %s\n", cp.ConfigHash)
	fmt.Fprintf(out, "Status:              %s\n", statusStr(cp.Complete))
	fmt.Fprintf(out, "Jobs:                %d / %d completed (%.1f%%)\n",
		checkpoint.GetCompletedCount(cp),
		cp.TotalJobs,
		checkpoint.GetProgressPercentage(cp, cp.TotalJobs))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Requested:         %d\n", cp.Stats.Requested)
	fmt.Fprintf(out, "  Accepted:          %d\n", cp.Stats.Accepted)
	fmt.Fprintf(out, "  Skipped:           %d\n", cp.Stats.Skipped)
	fmt.Fprintf(out, "  Failed:            %d\n", cp.Stats.Failed)
	fmt.Fprintf(out, "  Attempts:          %d\n", cp.Stats.Attempts)
	fmt.Fprintf(out, "  Rejected:          %d\n", cp.Stats.Rejected)
	fmt.Fprintln(out)

	if !cp.Complete {
		fmt.Fprintln(out, "To resume this run, repeat the original command with --resume")
	} else {
		fmt.Fprintln(out, "This run is complete.")
	}
	return nil
}
