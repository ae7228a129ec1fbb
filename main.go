package main

import (
	"os"

	"github.com/deploymenttheory/go-flowforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
