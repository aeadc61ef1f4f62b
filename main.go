package main

import (
	"os"

	"github.com/revio-dev/revio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
