package main

import (
	"github.com/giantswarm/parallel-prompt/cmd"
)

// Set at link time, e.g. -ldflags "-X main.version=v1.0.0".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, date)
	cmd.Execute()
}
