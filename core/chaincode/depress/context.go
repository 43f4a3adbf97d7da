/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"encoding/json"
	"fmt"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/depress-xyz/depress/core/program"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/pkg/errors"
)

// LogEvent is the name of the chaincode event that carries the messages an
// instruction logged.
const LogEvent = "program.log"

// ProgramLog is the payload of the LogEvent chaincode event.
type ProgramLog struct {
	Program program.ID `json:"program"`
	TxID    string     `json:"txid"`
	Logs    []string   `json:"logs"`
}

// Context is handed to every instruction handler. It carries the program's
// own identifier, the signer when the instruction requires one, and access
// to the world state.
type Context struct {
	ProgramID program.ID
	Stub      shim.ChaincodeStubInterface
	Ledger    *Ledger

	signer    program.ID
	hasSigner bool
	logger    *flogging.Logger
	logs      []string
}

func newContext(programID program.ID, stub shim.ChaincodeStubInterface, logger *flogging.Logger) *Context {
	return &Context{
		ProgramID: programID,
		Stub:      stub,
		Ledger:    &Ledger{Stub: stub},
		logger:    logger.With("txid", stub.GetTxID()),
	}
}

// Signer returns the address of the transaction creator. It fails for
// instructions that were dispatched without requiring a signer.
func (ctx *Context) Signer() (program.ID, error) {
	if !ctx.hasSigner {
		return program.ID{}, errors.New("instruction does not declare a signer")
	}
	return ctx.signer, nil
}

func (ctx *Context) resolveSigner() error {
	signer, err := SignerAddress(ctx.Stub)
	if err != nil {
		return err
	}
	ctx.signer = signer
	ctx.hasSigner = true
	return nil
}

// Msg records a program log line. The line is written to the program
// logger immediately and emitted to clients as part of the LogEvent when the
// instruction succeeds.
func (ctx *Context) Msg(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	ctx.logs = append(ctx.logs, line)
	ctx.logger.Info(line)
}

// Logs returns the lines recorded so far.
func (ctx *Context) Logs() []string {
	return append([]string(nil), ctx.logs...)
}

// emitLogs publishes the recorded lines as a chaincode event. Nothing is
// emitted when the instruction logged nothing.
func (ctx *Context) emitLogs() error {
	if len(ctx.logs) == 0 {
		return nil
	}
	payload, err := json.Marshal(&ProgramLog{
		Program: ctx.ProgramID,
		TxID:    ctx.Stub.GetTxID(),
		Logs:    ctx.logs,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal program log")
	}
	return errors.Wrap(ctx.Stub.SetEvent(LogEvent, payload), "failed to set program log event")
}
