package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release metadata, injected with -ldflags "-X .../version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running client build.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion string `json:"goVersion" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// GetInfo returns the build information. Values not injected at link time
// are filled from the VCS stamp the Go toolchain embeds, when present.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildSettings(bi.Settings)
	}
	return info
}

func (i Info) withBuildSettings(settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "unknown" && s.Value != "" {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.Date == "unknown" && s.Value != "" {
				i.Date = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
	return i
}

// ShortCommit is the commit hash cut to eight characters.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String returns a one-line description of the build
func (i Info) String() string {
	commit := i.ShortCommit()
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("FreeMentors %s (%s) built %s with %s for %s",
		i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// Short returns just the version number
func (i Info) Short() string {
	return i.Version
}

// UserAgent is the User-Agent header sent to the API
func (i Info) UserAgent() string {
	return fmt.Sprintf("freementors/%s (%s)", i.Version, i.Platform)
}
