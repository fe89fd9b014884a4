// Package buildinfo serves the version of the running engine.
// The version is recorded into every save and compared on load.
package buildinfo

import "runtime/debug"

// BuildInfo cotains build information supplied at compile time.
type BuildInfo struct {
	Version    string // build version. e.g. v0.10.0
	CommitHash string // commit hash in vcs. e.g. git commit hash
}

// String returns version-commit form. e.g. v0.10.0-abcdef
func (b BuildInfo) String() string {
	return b.Version + "-" + b.CommitHash
}

const develVersion = "(devel)"

var (
	// Those parameter can be supplied from compiler.
	// go build -ldflags "-X github.com/mzki/erasave/infra/buildinfo.version=v0.1.2 -X github.com/mzki/erasave/infra/buildinfo.commitHash=###"
	version    string = "dev"
	commitHash string = "none"

	readBuildInfo = debug.ReadBuildInfo
)

// Get returns BuildInfo filling with information supplied at compile time.
// When version is not supplied, the main module version recorded by
// go install is used if any.
func Get() BuildInfo {
	v := version
	if v == "dev" {
		if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != develVersion {
			v = bi.Main.Version
		}
	}
	return BuildInfo{
		Version:    v,
		CommitHash: commitHash,
	}
}
