package preprocessor

import (
	"fmt"
	"sort"
)

// Location ties an output line to the source line it came from. One is
// recorded whenever a file starts and whenever a file resumes after an
// @include; GlobalLine is the 1-based output line at that moment.
type Location struct {
	File       string
	LocalLine  int
	GlobalLine int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d(%d)", l.File, l.LocalLine, l.GlobalLine)
}

// Resolve maps a 1-based output line back to its file and local line using
// a location list produced by Process.
func Resolve(locations []Location, outputLine int) (file string, line int, ok bool) {
	i := sort.Search(len(locations), func(i int) bool {
		return locations[i].GlobalLine > outputLine
	})
	if i == 0 {
		return "", 0, false
	}
	loc := locations[i-1]
	return loc.File, loc.LocalLine + outputLine - loc.GlobalLine, true
}
