// Package dedupe provides the "dedupe" command, which asks the kernel
// to share storage blocks between duplicate files (Linux FIDEDUPERANGE,
// falling back to hard-linking elsewhere), grounded on
// original_source/act_dedupefiles.c.
package dedupe

import (
	"fmt"

	"github.com/jodyjdupes/jdupes-go/cmd"
	"github.com/jodyjdupes/jdupes-go/cmd/scanflags"
	"github.com/jodyjdupes/jdupes-go/internal/action"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/progress"
	"github.com/jodyjdupes/jdupes-go/internal/scan"
	"github.com/spf13/cobra"
)

var flags *scanflags.Values

var dedupeCmd = &cobra.Command{
	Use:   "dedupe ROOT...",
	Short: "Share storage blocks between duplicate files without changing paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		action.NoChangeCheck = cfg.NoChangeCheck
		log := logger.Command("dedupe")

		sink := progress.NewAutoSink(c.ErrOrStderr(), 0)
		result, err := scan.Scan(c.Context(), cfg, sink, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := c.OutOrStdout()
		var totalFiles int
		for _, head := range result.ChainHeads {
			fmt.Fprintf(out, "  [SRC] %s\n", head.Path)
			for _, res := range action.DedupeChain(head) {
				switch {
				case res.Err != nil:
					fmt.Fprintf(out, "  -XX-> %s -- %v\n", res.Target, res.Err)
				case res.Skipped:
					fmt.Fprintf(out, "  -==-> %s (%s)\n", res.Target, res.Reason)
				default:
					fmt.Fprintf(out, "  ====> %s\n", res.Target)
					totalFiles++
				}
			}
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "Deduplication done (%d files processed)\n", totalFiles)
		log.Info("dedupe complete", "duplicate_sets", len(result.ChainHeads))
		return nil
	},
}

func init() {
	flags = scanflags.Register(dedupeCmd)
	cmd.Register(dedupeCmd)
}
