// Package main is the entry point for the git-utils CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/runger/git-utils/internal/cmd"
	"github.com/runger/git-utils/internal/picker"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, picker.ErrCancelled) {
			fmt.Fprintf(os.Stderr, "git-utils: %v\n", err)
		}
		os.Exit(1)
	}
}
