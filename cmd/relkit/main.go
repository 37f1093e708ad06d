package main

import (
	"errors"
	"os"
	"os/exec"

	"github.com/relkit/relkit/internal/cli"
)

// version is set by ldflags during build.
var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		cli.PrintError(err.Error())

		// Propagate the exit code of a failing external tool.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
