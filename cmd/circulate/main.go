package main

import (
	"errors"
	"os"

	"github.com/rshade/circulate/internal/cli"
	"github.com/rshade/circulate/internal/dataset"
	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/pkg/version"
)

// Exit codes returned by the circulate binary.
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetFullVersion())
	return exitCode(root.Execute())
}

// exitCode maps an execution error to a process exit code. Rejected input
// data exits with 2 so scripts can tell it apart from other failures.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, emissions.ErrInvalidInput), errors.Is(err, dataset.ErrInvalidDataset):
		return exitInvalidInput
	default:
		return exitFailure
	}
}
