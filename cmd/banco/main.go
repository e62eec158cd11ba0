// Package main is the entry point for the banco CLI.
package main

import (
	"os"

	"github.com/congo-pay/banco/cmd/banco/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
