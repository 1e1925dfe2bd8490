// Command netprobe is a thin demo entrypoint wiring the scanning core
// (components A-J) into a runnable CLI. It exists to give the library a
// runnable shape, per spec.md §6's "CLI is an external collaborator"
// contract — flag parsing and output formatting here are intentionally
// minimal, not a deliverable output-formatter product.
package main

import (
	"fmt"
	"os"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] netprobe crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
