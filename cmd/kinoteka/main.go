// Package main is the entry point for the kinoteka CLI.
package main

import (
	"os"

	"github.com/jmylchreest/kinoteka/cmd/kinoteka/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
