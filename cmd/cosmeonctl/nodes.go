package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmeon/cosmeon/internal/console"
)

func newConsoleClient() *console.Client {
	return console.NewClient(apiURL, reqTimeout)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cluster health and the node registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newConsoleClient()
			ctx := context.Background()

			summary, err := client.ClusterHealth(ctx)
			if err != nil {
				return err
			}
			nodes, err := client.NodesStatus(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Cluster: %s (score %d), %d/%d nodes online\n\n",
				summary.HealthLabel, summary.HealthScore, summary.OnlineNodes, summary.TotalNodes)
			for _, n := range nodes.Nodes {
				fmt.Printf("  %-10s %-18s %6.1f/%.1f GB  %d files\n",
					n.ID, n.State,
					float64(n.UsedBytes)/(1024*1024*1024),
					float64(n.CapacityBytes)/(1024*1024*1024),
					n.FileCount)
			}
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll nodes and files continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")
			client := newConsoleClient()
			session := console.NewSession(client, interval)

			ctx, cancel := signalContext()
			defer cancel()

			go session.Run(ctx)

			ticker := newDisplayTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					snap := session.Latest()
					if snap == nil {
						continue
					}
					fmt.Printf("[%s] %d/%d nodes online, %d files",
						snap.TakenAt.Format("15:04:05"),
						snap.Nodes.OnlineNodes, snap.Nodes.TotalNodes, len(snap.Files))
					if snap.Partial != nil {
						fmt.Printf("  (partial: %v)", snap.Partial)
					}
					fmt.Println()
				}
			}
		},
	}
	cmd.Flags().Duration("interval", console.DefaultPollInterval, "poll interval")
	return cmd
}

func nodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "Print the raw node registry as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := newConsoleClient().NodesStatus(context.Background())
			if err != nil {
				return err
			}
			return printJSON(nodes)
		},
	}
}

func failCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fail <node-id>",
		Short: "Simulate a failure on a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newConsoleClient()
			commander := console.NewCommander(client, nil)
			res, err := commander.ToggleNode(context.Background(), args[0], true)
			if err != nil {
				return err
			}
			if !res.Changed {
				fmt.Printf("%s was already in %s\n", res.NodeID, res.State)
				return nil
			}
			fmt.Printf("%s -> %s\n", res.NodeID, res.State)
			return nil
		},
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <node-id>",
		Short: "Restore a simulated-failed node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newConsoleClient()
			commander := console.NewCommander(client, nil)
			res, err := commander.ToggleNode(context.Background(), args[0], false)
			if err != nil {
				return err
			}
			if !res.Changed {
				fmt.Printf("%s was already in %s\n", res.NodeID, res.State)
				return nil
			}
			fmt.Printf("%s -> %s\n", res.NodeID, res.State)
			return nil
		},
	}
}

func failuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failures",
		Short: "Show active simulated failures and their history",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := newConsoleClient().Failures(context.Background())
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func clearFailuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failures",
		Short: "Restore every simulated-failed node",
		RunE: func(cmd *cobra.Command, args []string) error {
			restored, err := newConsoleClient().ClearFailures(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("restored %d nodes\n", restored)
			return nil
		},
	}
}
