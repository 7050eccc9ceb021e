// SPDX-License-Identifier: MPL-2.0

package moddecl

import (
	"errors"
	"fmt"
	"os"
)

// ErrDeclarationExists is returned by WriteTemplate when the file exists and
// overwriting was not requested.
var ErrDeclarationExists = errors.New("declaration file already exists")

const template = `// Mods collected by modcollect. Run "modcollect collect" after editing.

// Output directory, relative to this file.
output: "build/mods"

// Local repositories searched for <name>/<version>/module.cue, in order.
// The repositories from the user configuration are searched after these.
repositories: []

mods: [
	// {name: "core", version: "1.0.0"},
	// {name: "my-mod", path: "../my-mod"},
]

// Files the host application already ships are never copied.
host: {
	dependencies: []
	build_output: []
}

// Uncomment to let "modcollect run" launch the application after collecting.
// The command is a shell command line; MODS_DIR points at the output
// directory. Args are appended as literal words.
// application: {
// 	command: "java -Dmods.dir=\"$MODS_DIR\" -jar build/libs/game.jar"
// 	args: []
// }
`

// Template returns the content of a starter declaration.
func Template() []byte { return []byte(template) }

// WriteTemplate writes a starter declaration to path. An existing file is
// only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrDeclarationExists, path)
		}
	}
	if err := os.WriteFile(path, Template(), 0o644); err != nil {
		return fmt.Errorf("write declaration template: %w", err)
	}
	return nil
}
