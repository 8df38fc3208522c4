package version

// Version information for fzmcp
var (
	// Version is the current semantic version of fzmcp
	Version = "0.3.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "fzmcp " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}
