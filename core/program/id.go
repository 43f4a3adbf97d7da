/*
SPDX-License-Identifier: Apache-2.0
*/

package program

import (
	"bytes"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// IDLength is the size of a program identifier or account address in bytes.
const IDLength = 32

// Declared is the textual form of the identifier this program is deployed
// under. It is fixed at build time.
const Declared = "65eB9Pni2mbcafm3juEZgoN3P52CNwbnSKFChBy14K7D"

// ProgramID is the identifier of the deployed program.
var ProgramID = MustParse(Declared)

// An ID is a 32 byte public value. Program identifiers, signer addresses and
// program derived addresses all share this representation.
type ID [IDLength]byte

// Parse decodes the base58 representation of an ID.
func Parse(s string) (ID, error) {
	var id ID
	if s == "" {
		return id, errors.New("empty address")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return id, errors.Wrapf(err, "invalid base58 address %q", s)
	}
	if len(b) != IDLength {
		return id, errors.Errorf("invalid address length %d for %q, expected %d", len(b), s, IDLength)
	}
	copy(id[:], b)
	return id, nil
}

// MustParse is like Parse but panics if the address cannot be decoded.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies b into an ID. The slice must be exactly IDLength bytes.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDLength {
		return id, errors.Errorf("invalid address length %d, expected %d", len(b), IDLength)
	}
	copy(id[:], b)
	return id, nil
}

func (id ID) String() string { return base58.Encode(id[:]) }

func (id ID) Bytes() []byte {
	b := make([]byte, IDLength)
	copy(b, id[:])
	return b
}

func (id ID) Equals(other ID) bool { return bytes.Equal(id[:], other[:]) }

func (id ID) IsZero() bool { return id == ID{} }

// MarshalText encodes the ID as base58 so that it reads naturally in JSON
// documents stored on the ledger.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
