package version

import (
	"fmt"
	"runtime"
)

// Populated via -ldflags at build time.
var (
	GitVersion = "v0.0.0-dev"
	GitCommit  = "unknown"
	BuildDate  = "1970-01-01T00:00:00Z"
)

// Info contains versioning information.
type Info struct {
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
}

// String returns the short version string.
func (i Info) String() string {
	return i.GitVersion
}

// Get returns the overall codebase version.
func Get() Info {
	return Info{
		GitVersion: GitVersion,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
