// Command ilrs-tle downloads the latest element sets of the active ILRS
// satellites (and any configured extra lists) from Space-Track.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
