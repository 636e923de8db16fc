// SPDX-License-Identifier: MIT
//
// Package build carries build metadata for the binary. Release builds set
// it with linker flags:
//
//	go build -ldflags "-X spectrogen/pkg/build.buildName=spectrogen \
//	  -X spectrogen/pkg/build.buildVersion=0.2.0 ..."
//
// Development builds without flags fall back to the module's VCS stamp.
package build

import (
	"fmt"
	"runtime/debug"
)

// Description is the one-line summary shown in the CLI help.
const Description = "Live spectrogram of an audio input or a sample file"

// Info is the build metadata.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the version line printed by --version.
func (i *Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var buildFlags = defaultInfo()

func defaultInfo() *Info {
	return &Info{
		Name:        "spectrogen",
		Description: Description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Initialize copies the linker-provided metadata into the build info. With
// no flags at all it describes a development build; a partial set is an
// error, since it means the release tooling is broken.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		fillFromVCS(buildFlags)
		return nil
	}

	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

func fillFromVCS(info *Info) {
	bi, ok := readBuildInfo()
	if !ok {
		return
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		case "vcs.time":
			info.Time = s.Value
		}
	}
}

// GetBuildFlags returns the build information. Call Initialize first.
func GetBuildFlags() *Info {
	return buildFlags
}
