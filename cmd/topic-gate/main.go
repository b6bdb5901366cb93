package main

import (
	"os"

	"github.com/rcliao/topic-gate/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
