/*
SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"github.com/depress-xyz/depress/core/operations"
	"github.com/depress-xyz/depress/internal/depress/common"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the chaincode under a peer.",
	Long: `Starts the chaincode and connects back to the peer that launched it. The
peer supplies the connection details through CORE_CHAINCODE_* variables.
The operations endpoint runs alongside the chaincode.`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Parsing of the command line is done so silence cmd usage
		cmd.SilenceUsage = true
		conf, err := common.InitConfig()
		if err != nil {
			return err
		}
		return start(newOperationsSystem(conf), shim.Start)
	},
}

// start runs the chaincode through run, normally shim.Start, next to the
// operations system.
func start(opsSystem *operations.System, run func(shim.Chaincode) error) error {
	cc := newChaincode(opsSystem)
	logger.Infof("Starting program %s", cc.ProgramID)

	peerConnection := startFunc(func() error { return run(cc) })
	return runGroup(opsSystem, chaincodeRunner(peerConnection))
}

type startFunc func() error

func (s startFunc) Start() error { return s() }
