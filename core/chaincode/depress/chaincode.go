/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"time"

	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/common/flogging"
	"github.com/depress-xyz/depress/common/metrics/disabled"
	"github.com/depress-xyz/depress/core/program"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("depress.chaincode")

// Chaincode is the depress program. It dispatches invocations to the
// instructions in its table.
type Chaincode struct {
	ProgramID program.ID
	Metrics   *Metrics

	programLogger *flogging.Logger
	instructions  map[string]*Instruction
}

// New returns the chaincode bound to the declared program id. A nil metrics
// value disables instrumentation.
func New(m *Metrics) *Chaincode {
	if m == nil {
		m = NewMetrics(&disabled.Provider{})
	}
	return &Chaincode{
		ProgramID:     program.ProgramID,
		Metrics:       m,
		programLogger: flogging.MustGetLogger("depress.program"),
		instructions:  instructionTable(),
	}
}

// Init is called when the chaincode is instantiated. The program holds no
// global state so there is nothing to set up.
func (c *Chaincode) Init(stub shim.ChaincodeStubInterface) pb.Response {
	logger.Debugf("[%s] init called for program %s", shortTxID(stub.GetTxID()), c.ProgramID)
	return shim.Success(nil)
}

// Invoke routes the invocation to the named instruction.
func (c *Chaincode) Invoke(stub shim.ChaincodeStubInterface) pb.Response {
	startTime := time.Now()
	function, args := stub.GetFunctionAndParameters()
	logger.Debugf("[%s] invoke is running %s", shortTxID(stub.GetTxID()), function)

	ix, ok := c.instructions[function]
	if !ok {
		logger.Warningf("[%s] invoke did not find func: %s", shortTxID(stub.GetTxID()), function)
		c.Metrics.InstructionCount.With("instruction", "unknown", "result", "error").Add(1)
		return shim.Error("Received unknown function invocation")
	}

	payload, err := c.execute(ix, stub, args)
	c.Metrics.InstructionDuration.With("instruction", ix.Name).Observe(time.Since(startTime).Seconds())
	c.Metrics.InstructionCount.With("instruction", ix.Name, "result", resultLabel(err)).Add(1)
	if err != nil {
		logger.Infof("[%s] instruction %s failed: %s", shortTxID(stub.GetTxID()), ix.Name, err)
		return shim.Error(err.Error())
	}
	return shim.Success(payload)
}

func (c *Chaincode) execute(ix *Instruction, stub shim.ChaincodeStubInterface, args []string) ([]byte, error) {
	if len(args) != ix.Args {
		return nil, errors.WithMessagef(perrors.ErrInstructionDidNotDeserialize, "instruction %s expects %d arguments, received %d", ix.Name, ix.Args, len(args))
	}

	ctx := newContext(c.ProgramID, stub, c.programLogger)
	if ix.Signer {
		if err := ctx.resolveSigner(); err != nil {
			return nil, err
		}
	}

	payload, err := ix.Handler(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ctx.emitLogs(); err != nil {
		return nil, err
	}
	return payload, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if pe, ok := perrors.AsProgramError(err); ok {
		return pe.Name
	}
	return "error"
}

func shortTxID(txID string) string {
	if len(txID) < 8 {
		return txID
	}
	return txID[0:8]
}
