package codegen

import (
	"embed"
	"io/fs"
)

//go:embed templates
var builtinTemplates embed.FS

// Builtin returns the templates shipped with the binary, laid out as
// <category>/<name>.mojo.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
