/*
SPDX-License-Identifier: Apache-2.0
*/

package program

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

const (
	// MaxSeedLength is the longest seed accepted for address derivation.
	MaxSeedLength = 32
	// MaxSeeds bounds the number of seeds, including the bump seed.
	MaxSeeds = 16

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress derives an address from seeds and a program id. The
// derived address never lies on the ed25519 curve so that no private key
// exists for it.
func CreateProgramAddress(seeds [][]byte, programID ID) (ID, error) {
	var addr ID
	if len(seeds) > MaxSeeds {
		return addr, ErrMaxSeedLengthExceeded
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return addr, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	copy(addr[:], h.Sum(nil))

	if IsOnCurve(addr[:]) {
		return ID{}, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bump seeds from 255 downwards and returns the
// first off-curve address together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, programID ID) (ID, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch err {
		case nil:
			return addr, uint8(bump), nil
		case ErrInvalidSeeds:
			continue
		default:
			return ID{}, 0, err
		}
	}
	return ID{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b is the canonical encoding of an ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != IDLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
