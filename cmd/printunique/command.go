// Package printunique provides the "print-unique" command, which lists
// every scanned file that has no duplicate anywhere in the scanned set.
package printunique

import (
	"fmt"

	"github.com/jodyjdupes/jdupes-go/cmd"
	"github.com/jodyjdupes/jdupes-go/cmd/scanflags"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/progress"
	"github.com/jodyjdupes/jdupes-go/internal/scan"
	"github.com/spf13/cobra"
)

var flags *scanflags.Values

var printUniqueCmd = &cobra.Command{
	Use:   "print-unique ROOT...",
	Short: "Print every scanned file that is not a duplicate of another",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		log := logger.Command("print-unique")

		sink := progress.NewAutoSink(c.ErrOrStderr(), 0)
		result, err := scan.Scan(c.Context(), cfg, sink, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := c.OutOrStdout()
		unique := 0
		for _, r := range result.Store.All() {
			if r.NotUnique {
				continue
			}
			fmt.Fprintln(out, r.Path)
			unique++
		}

		log.Info("print-unique complete", "files", result.FilesWalked, "unique", unique)
		return nil
	},
}

func init() {
	flags = scanflags.Register(printUniqueCmd)
	cmd.Register(printUniqueCmd)
}
