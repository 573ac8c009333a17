// Package version holds build metadata injected through -ldflags.
package version

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
