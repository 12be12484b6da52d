package domino

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release of this module.
var Version = strings.TrimSpace(version)
