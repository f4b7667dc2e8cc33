package version

var (
	// Version is the current version of the application (set via ldflags)
	Version = "dev"
	// GitCommitHash is the git commit hash the binary was built from
	GitCommitHash = "none"
	// BuildDate is the date the binary was built
	BuildDate = "unknown"
	// FullVersion combines the attributes above
	FullVersion = Version + " (" + GitCommitHash + ", " + BuildDate + ")"
)
