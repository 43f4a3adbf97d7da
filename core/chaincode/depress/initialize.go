/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

// InitializeAccounts is the accounts structure of the initialize
// instruction. It declares no accounts and therefore carries no constraints.
type InitializeAccounts struct{}

// Initialize logs the program identifier. It touches no state and cannot
// fail.
func Initialize(ctx *Context, _ InitializeAccounts) error {
	ctx.Msg("Greetings from: %s", ctx.ProgramID)
	return nil
}

func initializeHandler(ctx *Context, _ []string) ([]byte, error) {
	return nil, Initialize(ctx, InitializeAccounts{})
}
