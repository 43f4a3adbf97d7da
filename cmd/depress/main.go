/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/depress-xyz/depress/internal/depress/address"
	"github.com/depress-xyz/depress/internal/depress/node"
	"github.com/depress-xyz/depress/internal/depress/showconfig"
	"github.com/depress-xyz/depress/internal/depress/version"
	"github.com/spf13/cobra"
)

// The main command describes the service and
// defaults to printing the help message.
var mainCmd = &cobra.Command{Use: "depress"}

func main() {
	mainCmd.AddCommand(version.Cmd())
	mainCmd.AddCommand(node.StartCmd())
	mainCmd.AddCommand(node.ServeCmd())
	mainCmd.AddCommand(address.Cmd())
	mainCmd.AddCommand(showconfig.Cmd())

	// On failure Cobra prints the usage message and error string, so we only
	// need to exit with a non-0 status
	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
