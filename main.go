package main

import (
	"os"

	"github.com/UveshSamol/urbench-ats/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
