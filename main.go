package main

import (
	"os"

	"github.com/conneroisu/starlay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
