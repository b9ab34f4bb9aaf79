package buildinfo

// These variables are set via -ldflags when building release binaries:
//
//	-X 'github.com/gamersarena/arenabot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/gamersarena/arenabot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/gamersarena/arenabot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders a short human readable build description.
func String() string {
	s := Version + " (" + Commit
	if Date != "" {
		s += ", " + Date
	}
	return s + ")"
}
