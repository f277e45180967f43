// Command cvkinfo reports what the Vulkan driver offers to a cvk context.
//
// Usage:
//
//	cvkinfo instance [--debug] [--api-version 1.2]
//	cvkinfo adapters
//	cvkinfo version
package main

import (
	"os"

	"github.com/gogpu/cvk/internal/cli"
)

// Set by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date}))
}
