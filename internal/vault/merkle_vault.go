package vault

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/allowlist"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

// MerkleVault is the commitment variant: trusted and general destinations
// are Merkle roots, membership proven per transfer. A zero root disables its
// list entirely, so both checks pass for every destination until a real root
// is committed.
type MerkleVault struct {
	*core
	trusted *allowlist.Commitment
	general *allowlist.Commitment
}

func NewMerkleVault(params Params, registry *accesscontrol.Registry, transition *accesscontrol.Transition, store domain.SettingReader, mover domain.TokenMover, sink domain.Sink) *MerkleVault {
	v := &MerkleVault{
		core:    newCore(params, registry, transition, store, mover, sink),
		trusted: allowlist.NewCommitment(domain.ListTrusted, sink),
		general: allowlist.NewCommitment(domain.ListGeneral, sink),
	}
	v.core.policy = v
	return v
}

func (v *MerkleVault) isTrusted(req domain.TransferRequest) bool {
	return v.trusted.Verify(req.Destination, req.TrustedProof)
}

func (v *MerkleVault) passesGeneral(req domain.TransferRequest) bool {
	return v.general.Verify(req.Destination, req.DestinationProof)
}

// SetTrustedRoot replaces the trusted-destination commitment. SETTER only.
func (v *MerkleVault) SetTrustedRoot(ctx context.Context, caller common.Address, root common.Hash) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	v.trusted.SetRoot(ctx, root)
	return nil
}

// SetGeneralRoot replaces the general-destination commitment. SETTER only.
func (v *MerkleVault) SetGeneralRoot(ctx context.Context, caller common.Address, root common.Hash) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	v.general.SetRoot(ctx, root)
	return nil
}

// TrustedRoot returns the current trusted commitment.
func (v *MerkleVault) TrustedRoot() common.Hash {
	return v.trusted.Root()
}

// GeneralRoot returns the current general commitment.
func (v *MerkleVault) GeneralRoot() common.Hash {
	return v.general.Root()
}

// VerifyTrusted reports whether proof places addr in the trusted set.
func (v *MerkleVault) VerifyTrusted(addr common.Address, proof merkle.Proof) bool {
	return v.trusted.Verify(addr, proof)
}

// VerifyGeneral reports whether proof places addr in the general set.
func (v *MerkleVault) VerifyGeneral(addr common.Address, proof merkle.Proof) bool {
	return v.general.Verify(addr, proof)
}
