package main

import (
	"os"

	"github.com/dhenden/fsgrowth/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
