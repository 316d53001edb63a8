// Package main is the entry point for the jdupes-go duplicate file finder.
// It initializes all subcommands and executes the root command.
package main

import (
	"github.com/jodyjdupes/jdupes-go/cmd"
	_ "github.com/jodyjdupes/jdupes-go/cmd/dedupe"
	_ "github.com/jodyjdupes/jdupes-go/cmd/delete"
	_ "github.com/jodyjdupes/jdupes-go/cmd/errorondupe"
	_ "github.com/jodyjdupes/jdupes-go/cmd/json"
	_ "github.com/jodyjdupes/jdupes-go/cmd/link"
	_ "github.com/jodyjdupes/jdupes-go/cmd/printunique"
	_ "github.com/jodyjdupes/jdupes-go/cmd/scan"
	_ "github.com/jodyjdupes/jdupes-go/cmd/summarize"
)

// main is the entry point of the application.
// It executes the root command which handles all CLI interactions.
func main() {
	cmd.Execute()
}
