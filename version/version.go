package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build description served by /info and printed by
// "speakerctl version".
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
	IsRelease bool   `json:"is_release"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo merges the ldflags variables with the embedded VCS stamp.
// ldflags values win.
func GetVersionInfo() *Info {
	info := &Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = shortCommit(s.Value)
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					if _, err := time.Parse(time.RFC3339, s.Value); err == nil {
						info.BuildTime = s.Value
					}
				}
			}
		}
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String renders "1.0.0 (abc1234, dirty)" style output.
func (i *Info) String() string {
	switch {
	case i.GitCommit == "":
		return i.Version
	case i.IsDirty:
		return fmt.Sprintf("%s (%s, dirty)", i.Version, i.GitCommit)
	default:
		return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit)
	}
}

// UserAgent is sent on outbound producer and store calls.
func UserAgent() string {
	return "speakerkit/" + Version
}
