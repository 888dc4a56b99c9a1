// Package version holds the build version string.
package version

// Version is the current release version of titi.
const Version = "0.1.0"
