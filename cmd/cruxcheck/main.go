// Package main is the entry point for the cruxcheck CLI.
package main

import (
	"os"

	"github.com/crux-toolkit/cruxcheck/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
