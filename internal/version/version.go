// Package version holds the tool and decoder library versions.
package version

import "fmt"

// Tool version.
const (
	Major = 2
	Minor = 0
	Build = 0
	Ext   = ""
)

// Library describes the packet decoder library version.
type Library struct {
	Major, Minor uint8
	Build        uint32
	Ext          string
}

// Decoder returns the version of the packet decoder library.
func Decoder() Library {
	return Library{Major: Major, Minor: Minor, Build: Build, Ext: Ext}
}

// Banner returns "<name>-X.Y.Z<ext> / libipt-X.Y.Z<ext>".
func Banner(name string) string {
	lib := Decoder()
	return fmt.Sprintf("%s-%d.%d.%d%s / libipt-%d.%d.%d%s",
		name, Major, Minor, Build, Ext, lib.Major, lib.Minor, lib.Build, lib.Ext)
}
