// Package merkle implements the sorted-pair keccak256 commitment scheme used
// by the root-based allow-list stores. A leaf is the double keccak256 hash of
// a raw 20-byte address, which keeps the leaf domain disjoint from interior
// nodes. Interior nodes hash their children in ascending byte order, so
// proofs carry no direction bits. Levels with an odd node count promote the
// last node unchanged.
package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Proof is the sibling path from a leaf to the root, ordered leaf-first.
type Proof []common.Hash

// LeafHash returns the leaf commitment for an address. The address is hashed
// twice so that a 32-byte interior node can never be replayed as a leaf.
func LeafHash(addr common.Address) common.Hash {
	inner := crypto.Keccak256(addr.Bytes())
	return crypto.Keccak256Hash(inner)
}

// Verify reports whether proof links addr to root.
func Verify(root common.Hash, addr common.Address, proof Proof) bool {
	computed := LeafHash(addr)
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(b[:], a[:]) < 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// Tree is an in-memory Merkle tree over a fixed address set. It exists for
// fixture generation and tests; the vault itself only ever stores roots and
// verifies proofs.
type Tree struct {
	levels [][]common.Hash // levels[0] holds the leaves, the last level the root
	index  map[common.Hash]int
}

// BuildAddressTree constructs a tree over addrs in the given order.
func BuildAddressTree(addrs []common.Address) (*Tree, error) {
	if len(addrs) == 0 {
		return nil, errors.New("merkle: empty address set")
	}

	leaves := make([]common.Hash, len(addrs))
	index := make(map[common.Hash]int, len(addrs))
	for i, addr := range addrs {
		h := LeafHash(addr)
		leaves[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	levels := [][]common.Hash{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels, index: index}, nil
}

// Root returns the tree's root commitment.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// ProofFor returns the membership proof for addr.
func (t *Tree) ProofFor(addr common.Address) (Proof, error) {
	pos, ok := t.index[LeafHash(addr)]
	if !ok {
		return nil, fmt.Errorf("merkle: address %s not in tree", addr.Hex())
	}

	proof := make(Proof, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		if sibling := pos ^ 1; sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, nil
}

// Size returns the number of leaves, duplicates included.
func (t *Tree) Size() int {
	return len(t.levels[0])
}
