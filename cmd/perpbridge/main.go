package main

import (
	"os"

	"github.com/perpkit/bridge/cmd/perpbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
