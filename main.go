// Package main is the entry point for the lakerisk CLI.
package main

import (
	"github.com/huangsam/lakerisk/cmd"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Cannot run command", err)
	}
}
