// Package main is the entry point for the farectl CLI.
package main

import (
	"os"

	"farerules/cmd/farectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
