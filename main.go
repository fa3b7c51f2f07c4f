// SPDX-License-Identifier: MPL-2.0

package main

import cmd "sandrun-cli/cmd/sandrun"

func main() {
	cmd.Execute()
}
