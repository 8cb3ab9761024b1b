package allowlist

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

// Commitment is the succinct allow-list variant: a single Merkle root,
// membership proven per call. An all-zero root disables the list so every
// address passes.
type Commitment struct {
	mu   sync.RWMutex
	kind domain.ListKind
	root common.Hash
	sink domain.Sink
}

func NewCommitment(kind domain.ListKind, sink domain.Sink) *Commitment {
	return &Commitment{kind: kind, sink: sink}
}

// SetRoot replaces the commitment in one step.
func (c *Commitment) SetRoot(ctx context.Context, root common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
	c.sink.Emit(ctx, domain.RootChanged{List: c.kind, Root: root})
}

// Root returns the current commitment.
func (c *Commitment) Root() common.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Verify reports whether addr is committed to by the current root.
func (c *Commitment) Verify(addr common.Address, proof merkle.Proof) bool {
	root := c.Root()
	if root == (common.Hash{}) {
		return true
	}
	return merkle.Verify(root, addr, proof)
}
