// Package main is the entry point for the mvq CLI tool.
package main

import (
	"os"

	"github.com/realtyfeed/mvquery/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
