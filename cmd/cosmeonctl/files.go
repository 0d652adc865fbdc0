package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/console"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newDisplayTicker(interval time.Duration) *time.Ticker {
	if interval <= 0 {
		interval = console.DefaultPollInterval
	}
	return time.NewTicker(interval)
}

func filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List all files in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := newConsoleClient().ListFiles(context.Background())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("no files")
				return nil
			}
			for _, f := range files {
				fmt.Printf("  %-22s %-30s %-14s %d shards, %d bytes\n",
					f.ID, f.Filename, f.Scheme.Algorithm, len(f.Shards), f.OriginalSizeBytes)
			}
			return nil
		},
	}
}

func fileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file-status <file-id>",
		Short: "Show the derived redundancy status of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := newConsoleClient().FileStatus(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	}
}

func reconstructCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconstruct <file-id>",
		Short: "Rebuild a file from its surviving shards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			yes, _ := cmd.Flags().GetBool("yes")
			fileID := args[0]

			if output == "" {
				output = fileID + ".reconstructed"
			}
			dst, err := os.Create(output)
			if err != nil {
				return err
			}
			defer dst.Close()

			var confirm console.ConfirmFunc
			if !yes {
				confirm = func(info *port.ReconstructInfo) bool {
					fmt.Printf("Reconstruct %s from %d/%d shards (%d bytes)? [y/N] ",
						info.Filename, info.AvailableShards, info.TotalShards, info.OriginalSizeBytes)
					line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
					answer := strings.ToLower(strings.TrimSpace(line))
					return answer == "y" || answer == "yes"
				}
			}

			wf := console.NewReconstructWorkflow(newConsoleClient(), fileID, confirm)
			outcome, err := wf.Run(context.Background(), dst)
			if err != nil {
				_ = os.Remove(output)
				return err
			}

			switch outcome.State {
			case console.StateSaved:
				fmt.Printf("saved %d bytes to %s (attempt %s)\n", outcome.Bytes, output, outcome.AttemptID)
			case console.StateBlocked:
				_ = os.Remove(output)
				fmt.Printf("blocked: %d more shard(s) needed before reconstruction can run\n", outcome.Shortfall)
			case console.StateIdle:
				_ = os.Remove(output)
				fmt.Println("cancelled")
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output path (defaults to <file-id>.reconstructed)")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a file and its shards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newConsoleClient()
			commander := console.NewCommander(client, nil)
			report, err := commander.DeleteFile(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted %s (%d shards removed)\n", report.FileID, report.ShardsDeleted)
			for _, e := range report.Errors {
				fmt.Printf("  warning: %s\n", e)
			}
			return nil
		},
	}
}

func deleteAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every file in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				fmt.Print("Delete ALL files? [y/N] ")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				if answer != "y" && answer != "yes" {
					fmt.Println("cancelled")
					return nil
				}
			}
			report, err := newConsoleClient().DeleteAllFiles(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d/%d files (%d shards removed)\n",
				report.DeletedFiles, report.TotalFiles, report.ShardsDeleted)
			for _, e := range report.Errors {
				fmt.Printf("  warning: %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "skip the confirmation prompt")
	return cmd
}
