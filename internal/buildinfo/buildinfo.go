// Package buildinfo carries release metadata stamped into the mvq binary.
package buildinfo

// Set with -ldflags "-X github.com/realtyfeed/mvquery/internal/buildinfo.Version=..."
// on release builds. Empty for local builds, where debug.ReadBuildInfo is
// consulted instead.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
