// Package version carries build metadata, set at link time:
//
//	go build -ldflags "-X github.com/banshee-data/overlay.report/internal/version.Version=v0.3.0" ./cmd/replay
package version

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
