package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
}

// VERSION is the release version of this build, like "v0.1.0".
func VERSION() string {
	return version
}

// GIT_REVISION is the commit this build is made from.
func GIT_REVISION() string {
	return revision
}

// UserAgent identifies knitlabel in requests to collaborating services.
func UserAgent() string {
	return "knitlabel/" + version + " (" + revision + ")"
}
