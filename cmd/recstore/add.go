package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arstat/recstore"
	"github.com/Arstat/recstore/record"
)

// ErrEmptyName is returned when add is called without a name.
var ErrEmptyName = errors.New("name must not be empty")

func addCmd(gf *globalFlags) *cobra.Command {
	var rec record.Record

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a record to the store",
		Long: `Append a record to the store. The store file and its header are
created on the first add.

Examples:
  recstore add --id 101 --name "Alice Johnson" --designation Engineer --amount 85.5
  recstore -s people.rcs add --id 102 --name Bob --amount 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}
			rec.Name = strings.TrimSpace(rec.Name)
			if rec.Name == "" {
				return ErrEmptyName
			}
			rec.Designation = strings.TrimSpace(rec.Designation)

			st := recstore.Open(cfg.Store.Path, cfg.storeOptions(cmd.ErrOrStderr())...)
			if err := st.Append(cmd.Context(), rec); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Record added successfully.")
			fmt.Fprintln(out, rec)
			return nil
		},
	}

	cmd.Flags().Int64Var(&rec.ID, "id", 0, "record ID")
	cmd.Flags().StringVar(&rec.Name, "name", "", "name")
	cmd.Flags().StringVar(&rec.Designation, "designation", "", "designation")
	cmd.Flags().Float64Var(&rec.Amount, "amount", 0, "amount")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
