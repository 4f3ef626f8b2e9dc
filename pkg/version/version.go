// Package version exposes the build version of rv.
//
// Release builds set it at link time:
//
//	go build -ldflags "-X github.com/vanderheijden86/rv/pkg/version.Version=v1.2.0" ./cmd/rv
package version

import "runtime/debug"

// Version is the release tag, or the module version recorded by
// `go install` when the linker flag was not set
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
