// Package prompt implements the interactive "keep which files?" prompt
// shown during delete when not run with --no-prompt, a direct port of
// original_source/act_deletefiles.c's prompt loop.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jodyjdupes/jdupes-go/internal/record"
)

// Ask prints the numbered chain members to w and reads a preserve
// selection from r, asking again until the input names at least one
// valid member or starts with "n".
//
// Accepted input: "a"/"all" keeps every member, "n"/"none" keeps none
// (the result is then all false and the delete command removes every
// member of the set), or a space/comma separated list of 1-based
// indices.
func Ask(r io.Reader, w io.Writer, chain []*record.Record, ordinal, total int) ([]bool, error) {
	scanner := bufio.NewScanner(r)

	for {
		fmt.Fprintf(w, "Set %d of %d: keep which files? (1 - %d, [a]ll, [n]one): ", ordinal, total, len(chain))

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := scanner.Text()

		preserve := make([]bool, len(chain))
		tokens := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })

		if len(tokens) == 0 {
			continue
		}

		if first := strings.ToLower(tokens[0]); strings.HasPrefix(first, "n") {
			return preserve, nil
		}

		any := false
		for _, tok := range tokens {
			lower := strings.ToLower(tok)
			if strings.HasPrefix(lower, "a") {
				for i := range preserve {
					preserve[i] = true
				}
				any = true
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > len(chain) {
				continue
			}
			preserve[n-1] = true
			any = true
		}

		if !any {
			continue
		}
		return preserve, nil
	}
}
