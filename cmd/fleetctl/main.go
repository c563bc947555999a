package main

import (
	"os"

	"github.com/darksworm/argofleet/cmd/fleetctl/cmd"
	"github.com/darksworm/argofleet/pkg/logging"
)

func main() {
	logging.Setup()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
