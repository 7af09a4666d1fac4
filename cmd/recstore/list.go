package main

import (
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Arstat/recstore"
	"github.com/Arstat/recstore/archive"
	"github.com/Arstat/recstore/record"
)

func listCmd(gf *globalFlags) *cobra.Command {
	var (
		plain    bool
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all records in the store",
		Long: `List all records in append order, numbered from 1, followed by the total.

If the store ends in a corrupt record, the records before it are listed and
the command then fails with the corruption error. Use --snapshot to list a
snapshot without restoring it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}

			var seq iter.Seq2[record.Record, error]
			if snapshot != "" {
				bs, err := openBlobStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				seq = archive.ScanSnapshot(cmd.Context(), bs, snapshot, func(o *archive.Options) {
					o.StoreOptions = cfg.storeOptions(cmd.ErrOrStderr())
				})
			} else {
				seq = recstore.Scan(cmd.Context(), cfg.Store.Path, cfg.storeOptions(cmd.ErrOrStderr())...)
			}

			recs, scanErr := collect(seq)
			out := cmd.OutOrStdout()
			switch {
			case len(recs) == 0 && scanErr != nil:
				// Nothing was read; the error says why.
			case len(recs) == 0:
				fmt.Fprintln(out, "No records found.")
			case plain:
				renderPlain(out, recs)
			default:
				renderTable(out, recs)
			}
			return scanErr
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print one line per record instead of a table")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "list the named snapshot instead of the store")
	addBackendFlags(cmd)

	return cmd
}

// collect drains seq and returns the records read before the first error.
func collect(seq iter.Seq2[record.Record, error]) ([]record.Record, error) {
	var recs []record.Record
	for rec, err := range seq {
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func renderPlain(w io.Writer, recs []record.Record) {
	for i, rec := range recs {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec)
	}
	fmt.Fprintf(w, "Total records: %d\n", len(recs))
}

func renderTable(w io.Writer, recs []record.Record) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"#", "ID", "Name", "Designation", "Amount"})
	for i, rec := range recs {
		tbl.AppendRow(table.Row{
			i + 1,
			rec.ID,
			rec.Name,
			rec.Designation,
			strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		})
	}
	tbl.AppendFooter(table.Row{"", "", "", "Total", len(recs)})

	fmt.Fprintln(w, tbl.Render())
}
