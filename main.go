// Package main is the entry point for the gitgrade CLI.
package main

import (
	"os"

	"github.com/huangsam/gitgrade/cmd"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/iocache"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseCaching()
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
