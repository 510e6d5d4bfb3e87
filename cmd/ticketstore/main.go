// Command ticketstore is the CLI entry point: a thin wrapper around
// internal/repo wiring config load, logger construction, and cobra command
// dispatch together.
package main

import (
	"fmt"
	"os"

	"github.com/jra3/ticketstore/cmd/ticketstore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
