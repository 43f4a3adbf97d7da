/*
SPDX-License-Identifier: Apache-2.0
*/

package depress_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/depress-xyz/depress/core/chaincode/depress"
	"github.com/depress-xyz/depress/core/program"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-protos-go/msp"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/require"
)

type identity struct {
	creator []byte
	address program.ID
}

func newIdentity(t *testing.T, name string) *identity {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: name, Organization: []string{"Org1"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	creator, err := proto.Marshal(&msp.SerializedIdentity{
		Mspid:   "Org1MSP",
		IdBytes: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	})
	require.NoError(t, err)

	return &identity{
		creator: creator,
		address: program.ID(sha256.Sum256(cert.RawSubjectPublicKeyInfo)),
	}
}

type harness struct {
	stub *shimtest.MockStub
	txs  int
}

func newHarness(t *testing.T, cc *depress.Chaincode) *harness {
	h := &harness{stub: shimtest.NewMockStub("depress", cc)}
	res := h.stub.MockInit(h.nextTxID(), nil)
	require.EqualValues(t, 200, res.Status, res.Message)
	return h
}

func (h *harness) nextTxID() string {
	h.txs++
	return fmt.Sprintf("%064x", h.txs)
}

// invoke runs fn as id. A nil id sends no creator.
func (h *harness) invoke(id *identity, fn string, args ...string) pb.Response {
	h.stub.Creator = nil
	if id != nil {
		h.stub.Creator = id.creator
	}
	input := [][]byte{[]byte(fn)}
	for _, a := range args {
		input = append(input, []byte(a))
	}
	return h.stub.MockInvoke(h.nextTxID(), input)
}

func (h *harness) events() []*pb.ChaincodeEvent {
	var events []*pb.ChaincodeEvent
	for {
		select {
		case e := <-h.stub.ChaincodeEventsChannel:
			events = append(events, e)
		default:
			return events
		}
	}
}

func requireOK(t *testing.T, res pb.Response) {
	t.Helper()
	require.EqualValues(t, 200, res.Status, res.Message)
}

func requireErrorNumber(t *testing.T, res pb.Response, number uint32) {
	t.Helper()
	require.EqualValues(t, 500, res.Status)
	require.Contains(t, res.Message, fmt.Sprintf("Error Number: %d.", number))
}
