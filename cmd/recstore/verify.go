package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Arstat/recstore"
)

// ErrVerifyFailed is returned when at least one store is unhealthy.
var ErrVerifyFailed = errors.New("verification failed")

const defaultVerifyJobs = 4

// verifyResult is the outcome of verifying one store.
type verifyResult struct {
	stats      recstore.Stats
	duplicates uint64
	err        error
}

func (r verifyResult) healthy(strictIDs bool) bool {
	return r.err == nil && (!strictIDs || r.duplicates == 0)
}

func (r verifyResult) status() string {
	switch {
	case r.stats.Corrupt:
		return fmt.Sprintf("corrupt tail (%s)", humanize.Bytes(uint64(r.stats.TrailingBytes())))
	case errors.Is(r.err, recstore.ErrBadHeader):
		return "bad header"
	case r.err != nil:
		return "error: " + r.err.Error()
	default:
		return "ok"
	}
}

func verifyCmd(gf *globalFlags) *cobra.Command {
	var (
		jobs      int
		strictIDs bool
	)

	cmd := &cobra.Command{
		Use:   "verify [store...]",
		Short: "Check stores for corrupt tails and duplicate IDs",
		Long: `Scan each store end to end and report its record count, size and health.
Without arguments the configured store is verified. Stores are checked
concurrently.

Record IDs are not required to be unique; duplicates are reported and only
fail the command with --strict-ids.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, gf.cfgFile)
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths = []string{cfg.Store.Path}
			}

			results, err := verifyStores(cmd.Context(), paths, jobs, cfg.storeOptions(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			renderVerify(cmd.OutOrStdout(), results)

			failed := 0
			for _, r := range results {
				if !r.healthy(strictIDs) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d stores", ErrVerifyFailed, failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", defaultVerifyJobs, "number of stores verified in parallel")
	cmd.Flags().BoolVar(&strictIDs, "strict-ids", false, "fail on duplicate record IDs")

	return cmd
}

// verifyStores verifies every path with at most jobs concurrent scans.
// Per-store failures are reported in the results; only cancellation fails
// the whole call.
func verifyStores(ctx context.Context, paths []string, jobs int, opts []recstore.Option) ([]verifyResult, error) {
	results := make([]verifyResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = verifyStore(gctx, recstore.Open(path, opts...))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func verifyStore(ctx context.Context, st *recstore.Store) verifyResult {
	stats, err := st.Verify(ctx)
	res := verifyResult{stats: stats, err: err}
	if err != nil && !stats.Corrupt {
		return res
	}

	seen := roaring64.New()
	dups := roaring64.New()
	for rec, err := range st.Scan(ctx) {
		if err != nil {
			break
		}
		id := uint64(rec.ID)
		if seen.Contains(id) {
			dups.Add(id)
			continue
		}
		seen.Add(id)
	}
	res.duplicates = dups.GetCardinality()
	return res
}

func renderVerify(w io.Writer, results []verifyResult) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Store", "Records", "Size", "Valid", "Duplicate IDs", "Status"})
	for _, r := range results {
		tbl.AppendRow(table.Row{
			r.stats.Path,
			r.stats.Records,
			humanize.Bytes(uint64(r.stats.Size)),
			humanize.Bytes(uint64(r.stats.ValidBytes)),
			r.duplicates,
			r.status(),
		})
	}
	fmt.Fprintln(w, tbl.Render())
}
