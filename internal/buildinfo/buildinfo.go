// Package buildinfo carries the version stamped in at link time, e.g.
// -ldflags "-X boardlet/internal/buildinfo.Version=v0.3.0".
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short is the platform version reported to applets: the release version,
// else the commit, else "dev".
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	default:
		return "dev"
	}
}

// String is the full stamp for logs.
func String() string {
	return Short() + " (commit " + Commit + ", built " + Date + ")"
}
