// httpintercept CLI - validate and exercise HTTP interception bundles
package main

import (
	"os"

	"github.com/getmockd/httpintercept/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Execute())
}
