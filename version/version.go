package version

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Set by build flags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info contains version information.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Module  string `json:"module"`
}

// GetVersion returns the version string, preferring the compile-time value.
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "development"
}

// GetCommit returns the VCS revision, preferring the compile-time value.
func GetCommit() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	return buildSetting("vcs.revision")
}

// GetBuildDate returns the build date, preferring the compile-time value.
func GetBuildDate() string {
	if Date != "unknown" && Date != "" {
		return Date
	}
	return buildSetting("vcs.time")
}

func buildSetting(key string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == key {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// GetInfo returns complete version information.
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
		Module:  "github.com/meigma/npk",
	}
}

// GetFullVersion returns the version with the short commit and build date.
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit == "unknown" || len(info.Commit) <= 7 {
		return info.Version
	}
	short := info.Commit[:7]
	if info.Date != "unknown" {
		return fmt.Sprintf("%s (%s, built %s)", info.Version, short, info.Date)
	}
	return fmt.Sprintf("%s (%s)", info.Version, short)
}

// Fprint writes human-readable version information to w.
func Fprint(w io.Writer, appName string) error {
	info := GetInfo()
	_, err := fmt.Fprintf(w, "%s version %s\nModule: %s\nCommit: %s\nBuild Date: %s\n",
		appName, GetFullVersion(), info.Module, info.Commit, info.Date)
	return err
}
