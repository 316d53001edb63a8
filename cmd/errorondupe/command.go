// Package errorondupe provides the "error-on-dupe" command: it exits
// with status 255 the instant the first confirmed duplicate pair is
// found, printing both paths first, ported from match.c's registerpair
// behavior under -E.
package errorondupe

import (
	"errors"
	"fmt"

	"github.com/jodyjdupes/jdupes-go/cmd"
	"github.com/jodyjdupes/jdupes-go/cmd/scanflags"
	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/scan"
	"github.com/spf13/cobra"
)

const dupeFoundExitCode = 255

var flags *scanflags.Values

var errorOnDupeCmd = &cobra.Command{
	Use:   "error-on-dupe ROOT...",
	Short: "Exit with status 255 as soon as a duplicate pair is found",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		log := logger.Command("error-on-dupe")

		out := c.OutOrStdout()
		onDupe := func(a, b *record.Record) error {
			fmt.Fprintln(out, a.Path)
			fmt.Fprintln(out, b.Path)
			return coreerr.ExitCode(dupeFoundExitCode, fmt.Errorf("duplicate found: %s and %s", a.Path, b.Path))
		}

		_, err = scan.Scan(c.Context(), cfg, nil, onDupe)
		if err != nil {
			var exitErr *coreerr.ExitError
			if errors.As(err, &exitErr) {
				return exitErr
			}
			return fmt.Errorf("scan failed: %w", err)
		}
		log.Info("scan complete, no duplicates found")
		return nil
	},
}

func init() {
	flags = scanflags.Register(errorOnDupeCmd)
	cmd.Register(errorOnDupeCmd)
}
