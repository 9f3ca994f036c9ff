package main

import (
	"os"

	"github.com/recipebox-dev/recipebox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
