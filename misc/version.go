// Package misc keeps build time information.
package misc

// Set with -ldflags "-X hoverguard/misc.version=... -X hoverguard/misc.hash=..."
var (
	version = "dev"
	hash    = "unknown"
)

const appName = "hoverguard"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return hash
}
