// Package buildinfo identifies the running binary. Release builds set the
// variables with -ldflags "-X qviz/internal/buildinfo.Version=...".
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// vcs reads the revision the go tool stamps into module builds.
var vcs = func() (rev string, dirty bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return rev, dirty
}

func commit() (string, bool) {
	if Commit != "" {
		return Commit, false
	}
	return vcs()
}

// Short is the version if one was set, else an abbreviated commit, else "dev".
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	c, dirty := commit()
	if c == "" {
		return "dev"
	}
	c = c[:min(len(c), 7)]
	if dirty {
		c += "+dirty"
	}
	return c
}

func String() string {
	date := Date
	if date == "" {
		date = "unknown"
	}
	c, dirty := commit()
	if dirty {
		c += "+dirty"
	}
	return fmt.Sprintf("qviz %s (commit %s, built %s)", Version, c, date)
}
