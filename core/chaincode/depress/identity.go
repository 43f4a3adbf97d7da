/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"crypto/sha256"

	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/pkg/errors"
)

// SignerAddress derives the address of the transaction creator. The address
// is the SHA-256 digest of the DER encoded public key in the creator's X.509
// certificate, so it is stable across certificate renewals that keep the
// key.
func SignerAddress(stub cid.ChaincodeStubInterface) (program.ID, error) {
	cert, err := cid.GetX509Certificate(stub)
	if err != nil {
		return program.ID{}, errors.WithMessagef(perrors.ErrSignerRequired, "failed to read creator certificate: %s", err)
	}
	if cert == nil {
		return program.ID{}, errors.WithMessage(perrors.ErrSignerRequired, "creator has no X.509 certificate")
	}
	return program.ID(sha256.Sum256(cert.RawSubjectPublicKeyInfo)), nil
}
