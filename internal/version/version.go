package version

import "github.com/fatih/color"

// Version information for the yotest CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Major, Minor and Patch make up the semantic version.
	Major = "0"
	Minor = "1"
	Patch = "0"

	// Suffix is appended after the patch number.
	Suffix = "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// String returns the plain semantic version.
func String() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Pretty returns the version with each component colored. Colors follow
// color.NoColor at call time.
func Pretty() string {
	return versionMajorColor.Sprint(Major) + "." + versionMinorColor.Sprint(Minor) + "." + versionPatchColor.Sprint(Patch) + Suffix
}
