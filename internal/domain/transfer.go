package domain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

// TokenMover is the external transfer capability. An implementation either
// moves the full amount to the destination or fails without side effects.
type TokenMover interface {
	Transfer(ctx context.Context, asset, destination common.Address, amount *uint256.Int) error
}

// TransferRequest describes one requested outbound transfer.
//
// The proofs are only consulted by the Merkle vault variant; the explicit-list
// variant ignores them.
type TransferRequest struct {
	Asset       common.Address
	Destination common.Address
	Amount      *uint256.Int
	// Operation is a caller-supplied free-form tag carried on the
	// transfer-completed notification.
	Operation string
	// Timestamp selects the quota day bucket.
	Timestamp time.Time

	TrustedProof     merkle.Proof
	DestinationProof merkle.Proof
}

// Route identifies which policy path permitted a transfer.
type Route string

const (
	// RouteTrusted covers trusted destinations and unrestricted-role
	// callers; no quota accounting happens on this route.
	RouteTrusted Route = "trusted"
	// RouteQuota is the small-amount path; usage is recorded against the
	// destination's day bucket.
	RouteQuota Route = "quota"
)

// Decision is the outcome of a successful authorization.
type Decision struct {
	Route Route
	// Day is the bucket charged on the quota route, zero otherwise.
	Day uint64
}

// Capacity reports the remaining headroom for a destination within one day
// bucket. A dimension with its bound flag unset is unlimited.
type Capacity struct {
	Amount        *uint256.Int
	AmountBounded bool
	Count         uint64
	CountBounded  bool
}
