// pkg/version/version.go

package version

import "fmt"

var (
	version      = "0.1-dev"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns `VERSION (REVISIONDATE REVISION)`; the values are set
// with -ldflags at build time.
func Version() string {
	return fmt.Sprintf("litview %v (%v %v)", version, revisionDate, revision)
}
