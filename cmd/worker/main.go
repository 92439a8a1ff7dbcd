package main

import (
	"fmt"
	"os"

	"franchise_ops_worker/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "franchise-ops: %v\n", err)
		os.Exit(1)
	}
}
