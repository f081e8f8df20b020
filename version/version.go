package version

import "runtime/debug"

// Version is stamped at build time, e.g.
// go build -ldflags "-X github.com/vsariola/chirp/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with a "-dirty"
// suffix for modified trees, or "" when the build carries no VCS info.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		return revision + "-dirty"
	}
	return revision
}()

// VersionOrHash is what the commands print with -v.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()
