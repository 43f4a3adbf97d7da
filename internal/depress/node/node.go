/*
SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"fmt"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/spf13/cobra"
)

var logger = flogging.MustGetLogger("nodeCmd")

// StartCmd returns the command that runs the chaincode as a process
// launched by a peer.
func StartCmd() *cobra.Command {
	return startCmd
}

// ServeCmd returns the command that runs the chaincode as an external
// service the peer connects to.
func ServeCmd() *cobra.Command {
	return serveCmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("trailing args detected")
	}
	return nil
}
