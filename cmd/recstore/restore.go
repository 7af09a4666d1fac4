package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Arstat/recstore/archive"
)

func restoreCmd(gf *globalFlags) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a snapshot into the store path",
		Long: `Restore a snapshot into the configured store path. The snapshot is
verified before it replaces anything. An existing non-empty store is only
replaced with --overwrite.`,
		Args: cobra.ExactArgs(1),
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

			st, err := archive.Restore(cmd.Context(), bs, args[0], cfg.Store.Path, withCfg, func(o *archive.Options) {
				o.Overwrite = overwrite
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s: %d records, %s.\n",
				args[0], st.Path, st.Records, humanize.Bytes(uint64(st.Size)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing non-empty store")
	addBackendFlags(cmd)

	return cmd
}
