package main

import (
	"os"

	"github.com/UchihaStesla/friberg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
