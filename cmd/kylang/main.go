package main

import (
	"os"

	"github.com/msto63/kylang/cmd/kylang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
