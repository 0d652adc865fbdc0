package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	reqTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cosmeonctl",
		Short: "Operator console for the COSMEON storage control API",
		Long: `Inspect redundancy health of erasure-coded files, simulate node
outages and drive reconstructions against a running cosmeon API.`,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "base URL of the cosmeon API")
	rootCmd.PersistentFlags().DurationVar(&reqTimeout, "timeout", 15*time.Second, "per-request timeout")

	rootCmd.AddCommand(
		statusCmd(),
		watchCmd(),
		nodesCmd(),
		failCmd(),
		restoreCmd(),
		failuresCmd(),
		clearFailuresCmd(),
		filesCmd(),
		fileStatusCmd(),
		reconstructCmd(),
		deleteCmd(),
		deleteAllCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
