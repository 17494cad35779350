package client

import (
	"runtime"
	"strings"
)

// ClientName identifies this library in the source tag.
const ClientName = "serpapi-go"

// Version is the library version.
const Version = "1.0.0"

// SourceTag returns the diagnostic tag sent as the source parameter, e.g.
// "go@1.24.7,serpapi-go@1.0.0".
func SourceTag() string {
	return sourceTag(runtime.Version())
}

func sourceTag(goVersion string) string {
	module := ClientName + "@" + Version

	fields := strings.Fields(goVersion)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "go") {
		// devel toolchains report "devel +hash ..."
		return "go," + module
	}
	return "go@" + strings.TrimPrefix(fields[0], "go") + "," + module
}
