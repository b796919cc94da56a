// Command dcurves evaluates prediction models with decision curve analysis.
package main

import (
	"github.com/ltin1214/dcurves/cmd"
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/internal/runstore"
)

func main() {
	err := cmd.Execute()

	// Close stores and flush profiles before any exit path.
	runstore.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
