package main

import (
	"os"

	"github.com/ErikMLC/sqlmongo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
