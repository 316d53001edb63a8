// Package delete provides the "delete" command, which removes every
// duplicate in a chain except the ones the user chooses to keep,
// grounded on original_source/act_deletefiles.c.
package delete

import (
	"fmt"
	"os"

	"github.com/jodyjdupes/jdupes-go/cmd"
	"github.com/jodyjdupes/jdupes-go/cmd/scanflags"
	"github.com/jodyjdupes/jdupes-go/internal/action"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/progress"
	"github.com/jodyjdupes/jdupes-go/internal/prompt"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/scan"
	"github.com/spf13/cobra"
)

var (
	flags    *scanflags.Values
	noPrompt bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete ROOT...",
	Short: "Delete duplicate files, keeping one copy from each set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := flags.Build(args)
		if err != nil {
			return err
		}
		action.NoChangeCheck = cfg.NoChangeCheck
		log := logger.Command("delete")

		sink := progress.NewAutoSink(c.ErrOrStderr(), 0)
		result, err := scan.Scan(c.Context(), cfg, sink, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := c.OutOrStdout()
		total := len(result.ChainHeads)
		for i, head := range result.ChainHeads {
			pick := action.NonInteractivePreserver
			if !noPrompt {
				pick = func(chain []*record.Record) []bool {
					preserve, err := prompt.Ask(os.Stdin, out, chain, i+1, total)
					if err != nil {
						log.Warn("prompt failed, preserving chain head only", "error", err)
						return action.NonInteractivePreserver(chain)
					}
					return preserve
				}
			}

			for _, res := range action.DeleteChain(head, pick) {
				switch {
				case res.Preserved:
					fmt.Fprintf(out, "   [+] %s\n", res.Path)
				case res.Deleted:
					fmt.Fprintf(out, "   [-] %s\n", res.Path)
				default:
					fmt.Fprintf(out, "   [!] %s -- %s\n", res.Path, res.Reason)
				}
			}
			fmt.Fprintln(out)
		}

		log.Info("delete complete", "duplicate_sets", total)
		return nil
	},
}

func init() {
	flags = scanflags.Register(deleteCmd)
	deleteCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Preserve only the first file in each set without prompting")
	cmd.Register(deleteCmd)
}
