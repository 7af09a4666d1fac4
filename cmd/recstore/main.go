// Package main provides the recstore command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	cfgFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "recstore",
		Short: "Append-only record store",
		Long: `recstore manages an append-only file of typed records.

Commands:
  add        Append a record
  list       List records
  verify     Check stores for corrupt tails and duplicate IDs
  repair     Truncate a corrupt trailing record
  snapshot   Write a compressed snapshot
  snapshots  List snapshots
  restore    Restore a snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&gf.cfgFile, "config", "", "config file (default is ./recstore.yaml)")
	pf.StringP("store", "s", defaultStorePath, "store file path")
	pf.Bool("sync", false, "fsync after every append")
	pf.String("max-text-len", "1MiB", "maximum length of a text field accepted by add, at most 1MiB")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(addCmd(gf))
	rootCmd.AddCommand(listCmd(gf))
	rootCmd.AddCommand(verifyCmd(gf))
	rootCmd.AddCommand(repairCmd(gf))
	rootCmd.AddCommand(snapshotCmd(gf))
	rootCmd.AddCommand(snapshotsCmd(gf))
	rootCmd.AddCommand(restoreCmd(gf))

	return rootCmd
}
