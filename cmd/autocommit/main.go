// Package main is the entry point for the autocommit CLI. autocommit
// analyzes the staged git diff, generates a structured Chinese commit
// description, and runs the commit.
package main

import (
	"fmt"
	"os"

	"github.com/autocommit/autocommit/internal/cmd"
	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprintln(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
