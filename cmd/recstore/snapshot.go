package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Arstat/recstore/archive"
)

const snapshotExt = ".rcsa"

func snapshotCmd(gf *globalFlags) *cobra.Command {
	var (
		level        int
		allowCorrupt bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [name]",
		Short: "Write a compressed snapshot of the store",
		Long: `Write a compressed copy of the store to the snapshot backend. The
default name is the store file name plus a UTC timestamp.

A store with a corrupt trailing record is refused unless --allow-corrupt is
given, in which case only the valid records are archived.

Examples:
  recstore snapshot
  recstore snapshot --backend s3 --bucket backups --compression lz4 nightly.rcsa
  recstore snapshot --rate-limit 10MB`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}
			bs, err := openBlobStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			withCfg, err := cfg.archiveOptions(cmd)
			if err != nil {
				return err
			}

			name := snapshotName(cfg.Store.Path, time.Now())
			if len(args) == 1 {
				name = args[0]
			}

			info, err := archive.Snapshot(cmd.Context(), bs, name, cfg.Store.Path, withCfg, func(o *archive.Options) {
				o.Level = level
				o.AllowCorrupt = allowCorrupt
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s written: %d records, %s raw, %s stored (%s).\n",
				info.Name, info.Records,
				humanize.Bytes(uint64(info.RawBytes)), humanize.Bytes(uint64(info.StoredBytes)),
				info.Compression)
			if info.Skipped > 0 {
				fmt.Fprintf(out, "Left out %s of corrupt trailing data.\n", humanize.Bytes(uint64(info.Skipped)))
			}
			return nil
		},
	}

	cmd.Flags().String("compression", "zstd", "snapshot compression (none, zstd, lz4)")
	cmd.Flags().IntVar(&level, "level", 0, "compression level, 0 for the codec default")
	cmd.Flags().String("rate-limit", "0", "upload rate limit per second, e.g. 10MB (0 disables)")
	cmd.Flags().BoolVar(&allowCorrupt, "allow-corrupt", false, "archive the valid prefix of a store with a corrupt tail")
	addBackendFlags(cmd)

	return cmd
}

// snapshotName derives a snapshot name from the store file name.
func snapshotName(storePath string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(storePath), filepath.Ext(storePath))
	return base + "-" + now.UTC().Format("20060102T150405Z") + snapshotExt
}

func snapshotsCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots [prefix]",
		Short: "List snapshots in the snapshot backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}
			bs, err := openBlobStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := bs.List(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("failed to list snapshots: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No snapshots found.")
				return nil
			}

			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
			tbl.AppendHeader(table.Row{"Snapshot", "Size"})
			for _, name := range names {
				size := "?"
				if blob, err := bs.Open(cmd.Context(), name); err == nil {
					size = humanize.Bytes(uint64(blob.Size()))
					_ = blob.Close()
				}
				tbl.AppendRow(table.Row{name, size})
			}
			fmt.Fprintln(out, tbl.Render())
			return nil
		},
	}

	addBackendFlags(cmd)

	return cmd
}
