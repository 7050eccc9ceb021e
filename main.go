// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/Brownshome/game-modding/cmd/modcollect"

func main() {
	cmd.Execute()
}
