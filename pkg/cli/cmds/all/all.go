// Package all registers all shell commands.
package all

import (
	// courier vehicle commands.
	_ "github.com/robotalks/courier/pkg/cli/cmds/courier"
)
