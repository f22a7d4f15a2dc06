package main

import (
	"os"

	"github.com/baydroid/StarSeeds-Contracts/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
