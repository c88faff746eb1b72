package main

import (
	"os"

	"github.com/claudio1988-dev/talatrivia/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
