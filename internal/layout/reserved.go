package layout

import "sort"

// Directories the classifier owns. BinDir collects executables, MiscDir
// collects everything that has no reserved home.
const (
	BinDir  = "bin"
	MiscDir = "misc"
)

// reservedDirs is the fixed set of structural directory names. The
// flattener never unwraps them and the classifier leaves them in place.
var reservedDirs = map[string]bool{
	"bin":   true,
	"etc":   true,
	"lib":   true,
	"share": true,
	"doc":   true,
	"ssl":   true,
}

// IsReservedDir reports whether name is a reserved structural directory.
func IsReservedDir(name string) bool {
	return reservedDirs[name]
}

// ReservedDirs returns the reserved directory names in sorted order.
func ReservedDirs() []string {
	names := make([]string, 0, len(reservedDirs))
	for name := range reservedDirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
