package version

import "fmt"

// HeapsynthVersion indicates what version of the synthesizer the binary belongs to
var HeapsynthVersion string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of HeapsynthVersion and GitCommit
func String() string {
	return fmt.Sprintf("heapsynth version: %s\ngit commit: %s\n", HeapsynthVersion, GitCommit)
}
