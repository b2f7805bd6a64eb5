// Package main is the entry point of the searchr CLI.
package main

import (
	"os"

	"github.com/kailas-cloud/searchr/cmd/searchr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
