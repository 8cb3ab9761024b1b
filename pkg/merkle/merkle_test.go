package merkle_test

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

func testAddresses(n int) []common.Address {
	addrs := make([]common.Address, n)
	for i := range addrs {
		addrs[i] = common.HexToAddress(fmt.Sprintf("0x%040x", i+1))
	}
	return addrs
}

func TestProofRoundTrip(t *testing.T) {
	// Seven leaves forces an odd level at every depth.
	addrs := testAddresses(7)
	tree, err := merkle.BuildAddressTree(addrs)
	require.NoError(t, err)

	for _, addr := range addrs {
		proof, err := tree.ProofFor(addr)
		require.NoError(t, err)
		assert.True(t, merkle.Verify(tree.Root(), addr, proof), "proof for %s", addr.Hex())
	}
}

func TestProofDoesNotTransfer(t *testing.T) {
	addrs := testAddresses(8)
	tree, err := merkle.BuildAddressTree(addrs)
	require.NoError(t, err)

	proof, err := tree.ProofFor(addrs[0])
	require.NoError(t, err)

	assert.False(t, merkle.Verify(tree.Root(), addrs[1], proof))
	assert.False(t, merkle.Verify(tree.Root(), common.HexToAddress("0xdead"), proof))
}

func TestTamperedProofFails(t *testing.T) {
	addrs := testAddresses(4)
	tree, err := merkle.BuildAddressTree(addrs)
	require.NoError(t, err)

	proof, err := tree.ProofFor(addrs[2])
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	proof[0][0] ^= 0xff
	assert.False(t, merkle.Verify(tree.Root(), addrs[2], proof))
}

func TestSingleLeaf(t *testing.T) {
	addr := common.HexToAddress("0x01")
	tree, err := merkle.BuildAddressTree([]common.Address{addr})
	require.NoError(t, err)

	assert.Equal(t, merkle.LeafHash(addr), tree.Root())

	proof, err := tree.ProofFor(addr)
	require.NoError(t, err)
	assert.Empty(t, proof)
	assert.True(t, merkle.Verify(tree.Root(), addr, proof))
}

func TestBuildRejectsEmptySet(t *testing.T) {
	_, err := merkle.BuildAddressTree(nil)
	assert.Error(t, err)
}

func TestProofForUnknownAddress(t *testing.T) {
	tree, err := merkle.BuildAddressTree(testAddresses(3))
	require.NoError(t, err)

	_, err = tree.ProofFor(common.HexToAddress("0xbeef"))
	assert.Error(t, err)
}

func TestEmptyProofOnlyVerifiesLeafRoot(t *testing.T) {
	addrs := testAddresses(2)
	tree, err := merkle.BuildAddressTree(addrs)
	require.NoError(t, err)

	// With siblings stripped the claimed leaf no longer folds to the root.
	assert.False(t, merkle.Verify(tree.Root(), addrs[0], nil))
}
