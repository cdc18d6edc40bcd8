package main

import (
	"fmt"
	"os"

	"pkg.world.dev/world-engine/evmutil/cmd/evmutil/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
