package themes

import (
	"embed"
	"io/fs"
)

// DefaultThemeName identifies the bundled fallback theme.
const DefaultThemeName = "default"

//go:embed all:default
var builtinFS embed.FS

// BuiltinFS returns the embedded theme packages shipped with the module.
// The returned filesystem is rooted at the directory containing the theme
// directories, mirroring an on-disk themes directory.
func BuiltinFS() fs.FS {
	return builtinFS
}
