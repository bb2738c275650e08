package main

import (
	"context"
	"os"

	"github.com/paw-chain/tensornet/cmd/tensord/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
