// Package scan provides the "scan" command, which reports every
// duplicate set found under the given roots without changing anything.
package scan

import (
	"fmt"

	"github.com/jodyjdupes/jdupes-go/cmd"
	"github.com/jodyjdupes/jdupes-go/cmd/scanflags"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/progress"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/scan"
	"github.com/spf13/cobra"
)

var flags *scanflags.Values

var scanCmd = &cobra.Command{
	Use:   "scan ROOT...",
	Short: "Find duplicate files and print each duplicate set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		log := logger.Command("scan")
		log.Info("starting scan", "roots", args)

		sink := progress.NewAutoSink(c.ErrOrStderr(), 0)
		result, err := scan.Scan(c.Context(), cfg, sink, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := c.OutOrStdout()
		setNum := 0
		for _, head := range result.ChainHeads {
			setNum++
			fmt.Fprintf(out, "Set %d:\n", setNum)
			for _, r := range record.Chain(head) {
				fmt.Fprintf(out, "  %s\n", r.Path)
			}
			fmt.Fprintln(out)
		}
		log.Info("scan complete", "files", result.FilesWalked, "duplicate_sets", setNum)
		return nil
	},
}

func init() {
	flags = scanflags.Register(scanCmd)
	cmd.Register(scanCmd)
}
