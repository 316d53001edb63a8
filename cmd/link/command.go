// Package link provides the "link" command, replacing each duplicate
// in a set with a hard link or a relative symlink to one surviving
// copy, grounded on original_source/act_linkfiles.c.
package link

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

var (
	flags  *scanflags.Values
	hard   bool
	soft   bool
	dryRun bool
)

var linkCmd = &cobra.Command{
	Use:   "link ROOT...",
	Short: "Replace duplicate files with hard links or symlinks to one copy",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if hard == soft {
			return fmt.Errorf("specify exactly one of --hard or --soft")
		}
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		action.NoChangeCheck = cfg.NoChangeCheck
		log := logger.Command("link")

		mode := action.HardLink
		if soft {
			mode = action.SoftLink
		}

		sink := progress.NewAutoSink(c.ErrOrStderr(), 0)
		result, err := scan.Scan(c.Context(), cfg, sink, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := c.OutOrStdout()
		for _, head := range result.ChainHeads {
			for _, res := range action.LinkChain(head, action.LinkOptions{
				Mode:              mode,
				ConsiderHardlinks: cfg.ConsiderHardlinks,
				DryRun:            dryRun,
			}) {
				switch {
				case res.Err != nil:
					fmt.Fprintf(out, "  [!] %s -- %v\n", res.Target, res.Err)
				case res.Skipped:
					fmt.Fprintf(out, "  -==-> %s (%s)\n", res.Target, res.Reason)
				default:
					fmt.Fprintf(out, "  ====> %s\n", res.Target)
				}
			}
		}

		log.Info("link complete", "duplicate_sets", len(result.ChainHeads))
		return nil
	},
}

func init() {
	flags = scanflags.Register(linkCmd)
	linkCmd.Flags().BoolVar(&hard, "hard", false, "Replace duplicates with hard links")
	linkCmd.Flags().BoolVar(&soft, "soft", false, "Replace duplicates with relative symlinks")
	linkCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be linked without changing anything")
	cmd.Register(linkCmd)
}
