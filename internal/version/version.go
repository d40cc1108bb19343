package version

// Version is the semantic version of the catalog binary. Set via ldflags in
// release builds.
var Version = "0.1.0"
