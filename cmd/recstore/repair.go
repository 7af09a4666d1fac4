package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Arstat/recstore"
	"github.com/Arstat/recstore/record"
)

func repairCmd(gf *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Truncate a corrupt trailing record",
		Long: `Truncate the store to its last valid record boundary. Every record
before the corrupt tail is kept. A healthy store is left untouched and a
store with a bad header is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}
			st := recstore.Open(cfg.Store.Path, cfg.storeOptions(cmd.ErrOrStderr())...)
			out := cmd.OutOrStdout()

			before, err := st.Verify(cmd.Context())
			if err != nil && !before.Corrupt {
				return err
			}
			if !before.Corrupt {
				fmt.Fprintf(out, "%s is healthy: %d records, nothing to repair.\n", before.Path, before.Records)
				return nil
			}

			if errors.Is(err, record.ErrFieldTooLong) {
				return fmt.Errorf("not repairing %s: %w", before.Path, err)
			}

			trailing := humanize.Bytes(uint64(before.TrailingBytes()))
			if dryRun {
				fmt.Fprintf(out, "Would remove %s of corrupt data from %s, keeping %d records.\n",
					trailing, before.Path, before.Records)
				return nil
			}

			after, err := st.Repair(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %s of corrupt data from %s, kept %d records.\n",
				trailing, after.Path, after.Records)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would be removed without changing the store")

	return cmd
}
